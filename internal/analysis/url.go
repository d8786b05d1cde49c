package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lueurxax/sentiment-scope/internal/core/domain"
	apperrors "github.com/lueurxax/sentiment-scope/internal/core/errors"
	"github.com/lueurxax/sentiment-scope/internal/core/links"
	"github.com/lueurxax/sentiment-scope/internal/core/sentiment"
	"github.com/lueurxax/sentiment-scope/internal/core/translate"
	"github.com/lueurxax/sentiment-scope/internal/platform/observability"
	"github.com/lueurxax/sentiment-scope/internal/platform/worker"
)

// Fixed summary texts.
const (
	NoCommentsSummary     = "No comments available to analyze."
	SummaryNotConfigured  = "Summary unavailable: LLM API key not configured."
	SummaryGenerationFail = "Error generating summary."

	urlHistoryConfidence = 0.8
	urlHistoryPrefix     = "URL Analysis: "
	unknownTitle         = "Unknown"
)

type urlOutcome struct {
	display string
	res     domain.SentimentResult
	err     error
}

// AnalyzeURL fetches the texts behind rawURL, classifies each of them and asks the
// LLM for a narrative summary.
func (s *Service) AnalyzeURL(ctx context.Context, rawURL string) (*URLResult, error) {
	if s.deps.Fetcher == nil {
		return nil, fmt.Errorf("analyze url: %w", apperrors.ErrClientDisabled)
	}

	observability.AnalysesTotal.WithLabelValues(string(domain.AnalysisURL)).Inc()

	content, err := s.deps.Fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err //nolint:wrapcheck // fetcher errors already carry the URL
	}

	meta := Metadata{Title: content.Title, Description: content.Description, Source: content.Source}

	if len(content.Texts) == 0 {
		return &URLResult{
			Results:          []TextResult{},
			Summary:          Summarize(nil),
			WordFrequencies:  sentiment.FrequencyTable{},
			AISummary:        NoCommentsSummary,
			OverallSentiment: domain.LabelMixed,
			Metadata:         meta,
		}, nil
	}

	outcomes, err := worker.Map(ctx, s.pool, content.Texts, func(ctx context.Context, text string) urlOutcome {
		res, err := s.classify(ctx, text)
		return urlOutcome{display: s.displayText(ctx, text), res: res, err: err}
	})
	if err != nil {
		return nil, fmt.Errorf("analyze url: %w", err)
	}

	results := make([]TextResult, 0, len(outcomes))

	for _, o := range outcomes {
		if o.err != nil {
			return nil, o.err
		}

		results = append(results, TextResult{Text: o.display, SentimentResult: o.res})
	}

	summary := Summarize(results)
	overall := Overall(summary.SentimentCounts)

	out := &URLResult{
		Results:          results,
		Summary:          summary,
		WordFrequencies:  sentiment.WordFrequencies(content.Texts),
		AISummary:        s.aiSummary(ctx, content),
		OverallSentiment: overall,
		Metadata:         meta,
	}

	s.record(ctx, &domain.HistoryEntry{
		Text:       urlHistoryPrefix + strings.TrimSpace(rawURL),
		Sentiment:  overall,
		Confidence: urlHistoryConfidence,
		Scores: map[string]float64{
			"positive": float64(summary.SentimentCounts.Positive),
			"negative": float64(summary.SentimentCounts.Negative),
			"neutral":  float64(summary.SentimentCounts.Neutral),
		},
		ModelUsed:    dominantModel(results),
		AnalysisType: domain.AnalysisURL,
		Timestamp:    time.Now().UTC(),
	}, nil)

	s.logger.Info().
		Str(logFieldURL, rawURL).
		Str("source", content.Source).
		Int("texts", len(results)).
		Str("overall", string(overall)).
		Msg("url analyzed")

	return out, nil
}

func (s *Service) aiSummary(ctx context.Context, content *links.Content) string {
	if s.deps.Summarizer == nil {
		return SummaryNotConfigured
	}

	title := content.Title
	if strings.TrimSpace(title) == "" {
		title = unknownTitle
	}

	summary, err := s.deps.Summarizer.Summarize(ctx, title, content.Description, content.Texts)
	if err != nil {
		s.logger.Error().Err(err).Msg("LLM summary failed")
		return SummaryGenerationFail
	}

	return summary
}

// displayText appends the translation of non-ASCII text in parentheses.
func (s *Service) displayText(ctx context.Context, text string) string {
	if s.deps.Display == nil || text == "" || translate.IsASCII(text) {
		return text
	}

	translated := s.deps.Display.MaybeTranslate(ctx, text)
	if translated == "" || translated == text {
		return text
	}

	return text + " (" + translated + ")"
}

// dominantModel is the tier that produced most results.
func dominantModel(results []TextResult) domain.ModelTag {
	counts := make(map[domain.ModelTag]int)
	best := domain.ModelNone

	for _, r := range results {
		counts[r.ModelUsed]++

		if counts[r.ModelUsed] > counts[best] {
			best = r.ModelUsed
		}
	}

	return best
}
