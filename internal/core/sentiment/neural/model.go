// Package neural implements the transformer tier: a local WordPiece tokenizer
// and a remote KServe v2 inference endpoint serving the sequence classifier.
package neural

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"

	"github.com/lueurxax/sentiment-scope/internal/core/domain"
)

const (
	vocabFile           = "vocab.txt"
	configFile          = "config.json"
	tokenizerConfigFile = "tokenizer_config.json"

	defaultMaxLength = 128
	defaultTimeout   = 10 * time.Second
)

// Config configures Load.
type Config struct {
	ModelName    string
	InferenceURL string
	Timeout      time.Duration
	MaxLength    int
}

// LogitsSource produces logits for an encoded sequence.
type LogitsSource interface {
	Logits(ctx context.Context, ids, mask []int64) ([]float64, error)
}

// Model is the transformer tier.
type Model struct {
	tokenizer *Tokenizer
	source    LogitsSource
	labels    labelIndex
}

// Load reads the tokenizer and label config from dir and connects to the inference server.
func Load(dir string, cfg Config, logger *zerolog.Logger) (*Model, error) {
	if cfg.MaxLength <= 0 {
		cfg.MaxLength = defaultMaxLength
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	vocab, err := LoadVocab(filepath.Join(dir, vocabFile))
	if err != nil {
		return nil, err
	}

	lower, err := readLowerCase(filepath.Join(dir, tokenizerConfigFile))
	if err != nil {
		return nil, err
	}

	tok, err := NewTokenizer(vocab, lower, cfg.MaxLength)
	if err != nil {
		return nil, err
	}

	labels, err := readModelConfig(filepath.Join(dir, configFile))
	if err != nil {
		return nil, err
	}

	logger.Info().
		Int("vocab_size", len(vocab)).
		Int("classes", labels.size).
		Str("endpoint", cfg.InferenceURL).
		Msg("transformer tokenizer loaded")

	return NewModel(tok, NewInferClient(cfg.InferenceURL, cfg.ModelName, cfg.Timeout, logger), labels), nil
}

// NewModel assembles a model from parts. A zero labelIndex means negative, neutral, positive.
func NewModel(tok *Tokenizer, source LogitsSource, labels labelIndex) *Model {
	if labels.size == 0 {
		labels = defaultLabelIndex
	}

	return &Model{tokenizer: tok, source: source, labels: labels}
}

// Predict implements the sentiment Predictor.
func (m *Model) Predict(ctx context.Context, text string) (domain.Probabilities, error) {
	ids, mask := m.tokenizer.Encode(text)

	logits, err := m.source.Logits(ctx, ids, mask)
	if err != nil {
		return domain.Probabilities{}, err
	}

	if len(logits) != m.labels.size {
		return domain.Probabilities{}, fmt.Errorf("%w: got %d logits, want %d", errUnsupportedLabels, len(logits), m.labels.size)
	}

	probs := Softmax(logits)

	return domain.Probabilities{
		Negative: m.labels.pick(probs, m.labels.negative),
		Neutral:  m.labels.pick(probs, m.labels.neutral),
		Positive: m.labels.pick(probs, m.labels.positive),
	}, nil
}

// Softmax returns the normalized exponentials of logits.
func Softmax(logits []float64) []float64 {
	if len(logits) == 0 {
		return nil
	}

	out := make([]float64, len(logits))
	copy(out, logits)

	floats.AddConst(-floats.Max(out), out)

	for i, v := range out {
		out[i] = math.Exp(v)
	}

	floats.Scale(1/floats.Sum(out), out)

	return out
}
