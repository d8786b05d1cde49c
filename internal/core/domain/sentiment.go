package domain

// Label is a sentiment class.
type Label string

// Sentiment labels, in model output order.
const (
	LabelNegative Label = "Negative"
	LabelNeutral  Label = "Neutral"
	LabelPositive Label = "Positive"

	// LabelMixed is only used for aggregated URL analyses.
	LabelMixed Label = "Mixed"
)

// ModelTag identifies the tier that produced a result.
type ModelTag string

// Tier tags.
const (
	ModelNone        ModelTag = "None"
	ModelTransformer ModelTag = "Transformer"
	ModelBaseline    ModelTag = "Baseline"
	ModelLexicon     ModelTag = "VADER-fallback"
)

// Degenerate default values.
const (
	DefaultConfidence   = 0.33
	DefaultNegative     = 0.33
	DefaultNeutral      = 0.34
	DefaultPositive     = 0.33
	CollapseZeroDefault = 0.5
)

// Scores holds per-class scores. They are not required to sum to one.
type Scores struct {
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
	Positive float64 `json:"positive"`
}

// Map returns the scores keyed by lowercase class name.
func (s Scores) Map() map[string]float64 {
	return map[string]float64{
		"negative": s.Negative,
		"neutral":  s.Neutral,
		"positive": s.Positive,
	}
}

// Probabilities are raw class probabilities produced by a model tier.
type Probabilities struct {
	Negative float64
	Neutral  float64
	Positive float64
}

// SentimentResult is the outcome of one classification.
type SentimentResult struct {
	Sentiment  Label    `json:"sentiment"`
	Confidence float64  `json:"confidence"`
	Scores     Scores   `json:"scores"`
	ModelUsed  ModelTag `json:"model_used"`
}

// DefaultResult is returned when there is nothing to classify or no tier is available.
func DefaultResult() SentimentResult {
	return SentimentResult{
		Sentiment:  LabelNeutral,
		Confidence: DefaultConfidence,
		Scores: Scores{
			Negative: DefaultNegative,
			Neutral:  DefaultNeutral,
			Positive: DefaultPositive,
		},
		ModelUsed: ModelNone,
	}
}
