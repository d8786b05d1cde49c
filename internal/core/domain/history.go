package domain

import "time"

// AnalysisType records which entry point produced a history row.
type AnalysisType string

// Analysis types.
const (
	AnalysisSingle AnalysisType = "single"
	AnalysisBulk   AnalysisType = "bulk"
	AnalysisCSV    AnalysisType = "csv"
	AnalysisURL    AnalysisType = "url"
)

// AnalysisTypes lists every analysis type.
var AnalysisTypes = []AnalysisType{AnalysisSingle, AnalysisBulk, AnalysisCSV, AnalysisURL}

// HistoryEntry is one persisted analysis.
type HistoryEntry struct {
	ID           string             `json:"id"`
	Text         string             `json:"text"`
	Sentiment    Label              `json:"sentiment"`
	Confidence   float64            `json:"confidence"`
	Scores       map[string]float64 `json:"scores"`
	ModelUsed    ModelTag           `json:"model_used"`
	AnalysisType AnalysisType       `json:"analysis_type"`
	Timestamp    time.Time          `json:"timestamp"`
	Embedding    []float32          `json:"-"`
}

// SimilarEntry is a history row returned by a similarity search.
type SimilarEntry struct {
	HistoryEntry
	Similarity float64 `json:"similarity"`
}

// HistoryFilter narrows history listings.
type HistoryFilter struct {
	Limit int
	Since time.Time
	Until time.Time
}

// SentimentCounts counts results per label.
type SentimentCounts struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// Add counts one label. Labels outside the three classes are ignored.
func (c *SentimentCounts) Add(label Label) {
	switch label {
	case LabelPositive:
		c.Positive++
	case LabelNegative:
		c.Negative++
	case LabelNeutral:
		c.Neutral++
	case LabelMixed:
	}
}

// SentimentPercentages holds per-label shares in percent.
type SentimentPercentages struct {
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
}

// Summary aggregates a batch of results.
type Summary struct {
	TotalAnalyzed        int                  `json:"total_analyzed"`
	SentimentCounts      SentimentCounts      `json:"sentiment_counts"`
	SentimentPercentages SentimentPercentages `json:"sentiment_percentages"`
}

// Stats aggregates the whole history.
type Stats struct {
	TotalAnalyses         int                  `json:"total_analyses"`
	SentimentDistribution SentimentCounts      `json:"sentiment_distribution"`
	ByType                map[AnalysisType]int `json:"by_type"`
}
