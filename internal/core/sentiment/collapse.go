package sentiment

import (
	"fmt"
	"math"

	"github.com/lueurxax/sentiment-scope/internal/core/domain"
	apperrors "github.com/lueurxax/sentiment-scope/internal/core/errors"
)

// LexiconThreshold separates lexicon labels by compound score.
const LexiconThreshold = 0.05

// Collapse turns model probabilities into a two-class decision. The neutral
// probability never decides the label and is reported as 0. A tie goes to Negative.
func Collapse(p domain.Probabilities, tag domain.ModelTag) domain.SentimentResult {
	result := domain.SentimentResult{
		Scores: domain.Scores{
			Negative: p.Negative,
			Neutral:  0,
			Positive: p.Positive,
		},
		ModelUsed: tag,
	}

	switch {
	case p.Positive+p.Negative <= 0:
		result.Sentiment = domain.LabelNegative
		result.Confidence = domain.CollapseZeroDefault
	case p.Positive > p.Negative:
		result.Sentiment = domain.LabelPositive
		result.Confidence = p.Positive
	default:
		result.Sentiment = domain.LabelNegative
		result.Confidence = p.Negative
	}

	return result
}

// FromPolarity labels a lexicon score. Unlike Collapse it can produce Neutral.
func FromPolarity(p Polarity) domain.SentimentResult {
	result := domain.SentimentResult{
		Scores: domain.Scores{
			Negative: p.Negative,
			Neutral:  p.Neutral,
			Positive: p.Positive,
		},
		ModelUsed: domain.ModelLexicon,
	}

	switch {
	case p.Compound >= LexiconThreshold:
		result.Sentiment = domain.LabelPositive
		result.Confidence = p.Positive
	case p.Compound <= -LexiconThreshold:
		result.Sentiment = domain.LabelNegative
		result.Confidence = p.Negative
	default:
		result.Sentiment = domain.LabelNeutral
		result.Confidence = p.Neutral
	}

	return result
}

func validateProbabilities(p domain.Probabilities) error {
	for _, v := range []float64{p.Negative, p.Neutral, p.Positive} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("%w: probability %v outside [0,1]", apperrors.ErrUnexpectedShape, v)
		}
	}

	return nil
}
