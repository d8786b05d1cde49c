package analysis

import (
	"math"

	"github.com/lueurxax/sentiment-scope/internal/core/domain"
	"github.com/lueurxax/sentiment-scope/internal/core/sentiment"
)

// TextResult is a classification together with the (truncated or display) text.
type TextResult struct {
	Text string `json:"text"`
	domain.SentimentResult
}

// BatchResult is the outcome of a bulk or CSV analysis.
type BatchResult struct {
	Results         []TextResult             `json:"results"`
	Summary         domain.Summary           `json:"summary"`
	WordFrequencies sentiment.FrequencyTable `json:"word_frequencies"`
}

// Metadata describes an analysed page.
type Metadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Source      string `json:"source,omitempty"`
}

// URLResult is the outcome of a URL analysis.
type URLResult struct {
	Results          []TextResult             `json:"results"`
	Summary          domain.Summary           `json:"summary"`
	WordFrequencies  sentiment.FrequencyTable `json:"word_frequencies"`
	AISummary        string                   `json:"ai_summary"`
	OverallSentiment domain.Label             `json:"overall_sentiment"`
	Metadata         Metadata                 `json:"metadata"`
}

// Summarize counts labels and computes percentages rounded to two decimals.
func Summarize(results []TextResult) domain.Summary {
	var counts domain.SentimentCounts

	for _, r := range results {
		counts.Add(r.Sentiment)
	}

	total := len(results)

	return domain.Summary{
		TotalAnalyzed:   total,
		SentimentCounts: counts,
		SentimentPercentages: domain.SentimentPercentages{
			Positive: percent(counts.Positive, total),
			Negative: percent(counts.Negative, total),
			Neutral:  percent(counts.Neutral, total),
		},
	}
}

// Overall is Positive or Negative when one side outnumbers the other, else Mixed.
func Overall(counts domain.SentimentCounts) domain.Label {
	switch {
	case counts.Positive > counts.Negative:
		return domain.LabelPositive
	case counts.Negative > counts.Positive:
		return domain.LabelNegative
	default:
		return domain.LabelMixed
	}
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}

	return math.Round(float64(n)/float64(total)*100*100) / 100
}
