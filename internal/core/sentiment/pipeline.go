// Package sentiment implements the tiered sentiment classifier.
//
// Tiers are tried in a fixed order: neural (when preferred), classical, lexicon.
// A tier that is unloaded is skipped; a tier that fails is logged and the next one
// runs on the same input. When no tier produces a result the degenerate default
// (Neutral, 0.33, model "None") is returned.
package sentiment

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/lueurxax/sentiment-scope/internal/core/domain"
	apperrors "github.com/lueurxax/sentiment-scope/internal/core/errors"
	"github.com/lueurxax/sentiment-scope/internal/core/textnorm"
	"github.com/lueurxax/sentiment-scope/internal/platform/observability"
)

const (
	logFieldTier = "tier"
)

// Translator is the language bridge used before normalization.
type Translator interface {
	Translate(ctx context.Context, raw string) (string, error)
}

type step struct {
	tag domain.ModelTag
	run func(ctx context.Context, text string) (domain.SentimentResult, error)
}

// Pipeline classifies text. It is read-only after construction and safe for concurrent use.
type Pipeline struct {
	tiers      Tiers
	translator Translator
	logger     *zerolog.Logger

	preferred []step
	fallback  []step
}

// NewPipeline builds a pipeline over tiers. A nil translator disables translation.
func NewPipeline(tiers Tiers, translator Translator, logger *zerolog.Logger) *Pipeline {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	p := &Pipeline{
		tiers:      tiers,
		translator: translator,
		logger:     logger,
	}

	var neural, rest []step

	if h, ok := tiers.Neural.Get(); ok {
		neural = append(neural, predictorStep(domain.ModelTransformer, h))
	}

	if h, ok := tiers.Classical.Get(); ok {
		rest = append(rest, predictorStep(domain.ModelBaseline, h))
	}

	if h, ok := tiers.Lexicon.Get(); ok {
		rest = append(rest, lexiconStep(h))
	}

	p.preferred = append(neural, rest...)
	p.fallback = rest

	for tag, loaded := range tiers.Status() {
		value := 0.0
		if loaded {
			value = 1
		}

		observability.TiersLoaded.WithLabelValues(string(tag)).Set(value)
	}

	return p
}

// Tiers returns the tier set the pipeline was built with.
func (p *Pipeline) Tiers() Tiers {
	return p.tiers
}

// Analyze classifies raw user text: translation, normalization, then Classify.
// The only error is apperrors.ErrInvalidInput for text that is not valid UTF-8.
func (p *Pipeline) Analyze(ctx context.Context, raw string, preferNeural bool) (domain.SentimentResult, error) {
	if !utf8.ValidString(raw) {
		return domain.SentimentResult{}, fmt.Errorf("%w: text is not valid UTF-8", apperrors.ErrInvalidInput)
	}

	if strings.TrimSpace(raw) == "" {
		return domain.DefaultResult(), nil
	}

	text := raw

	if p.translator != nil {
		translated, err := p.translator.Translate(ctx, raw)
		if err != nil {
			p.logger.Warn().Err(err).Msg("translation failed, classifying original text")
		} else {
			text = translated
		}
	}

	return p.Classify(ctx, textnorm.Normalize(text), preferNeural), nil
}

// Classify runs the tier cascade over already normalized text. It never fails.
func (p *Pipeline) Classify(ctx context.Context, text string, preferNeural bool) domain.SentimentResult {
	if strings.TrimSpace(text) == "" {
		return domain.DefaultResult()
	}

	steps := p.fallback
	if preferNeural {
		steps = p.preferred
	}

	for _, s := range steps {
		result, err := p.invoke(ctx, s, text)
		if err != nil {
			observability.TierFailures.WithLabelValues(string(s.tag)).Inc()
			p.logger.Warn().Err(err).Str(logFieldTier, string(s.tag)).Msg("tier failed, falling through")

			continue
		}

		observability.ClassificationsTotal.WithLabelValues(string(result.ModelUsed), string(result.Sentiment)).Inc()

		return result
	}

	result := domain.DefaultResult()
	observability.ClassificationsTotal.WithLabelValues(string(result.ModelUsed), string(result.Sentiment)).Inc()

	return result
}

func (p *Pipeline) invoke(ctx context.Context, s step, text string) (result domain.SentimentResult, err error) {
	start := time.Now()

	defer func() {
		observability.TierDuration.WithLabelValues(string(s.tag)).Observe(time.Since(start).Seconds())

		if r := recover(); r != nil {
			err = &TierError{Tier: s.tag, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	result, err = s.run(ctx, text)
	if err != nil {
		return domain.SentimentResult{}, &TierError{Tier: s.tag, Err: err}
	}

	return result, nil
}

func predictorStep(tag domain.ModelTag, h Predictor) step {
	return step{
		tag: tag,
		run: func(ctx context.Context, text string) (domain.SentimentResult, error) {
			probs, err := h.Predict(ctx, text)
			if err != nil {
				return domain.SentimentResult{}, err
			}

			if err := validateProbabilities(probs); err != nil {
				return domain.SentimentResult{}, err
			}

			return Collapse(probs, tag), nil
		},
	}
}

func lexiconStep(h LexiconScorer) step {
	return step{
		tag: domain.ModelLexicon,
		run: func(_ context.Context, text string) (domain.SentimentResult, error) {
			pol, err := h.Polarity(text)
			if err != nil {
				return domain.SentimentResult{}, err
			}

			return FromPolarity(pol), nil
		},
	}
}
