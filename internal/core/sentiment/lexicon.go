package sentiment

import (
	"github.com/jonreiter/govader"
)

// VaderLexicon scores text with the VADER lexicon. The analyzer's tables are built
// once and only read afterwards, so a single instance serves concurrent callers.
type VaderLexicon struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVaderLexicon builds the lexicon tier. It needs no external files.
func NewVaderLexicon() *VaderLexicon {
	return &VaderLexicon{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Polarity implements LexiconScorer.
func (v *VaderLexicon) Polarity(text string) (Polarity, error) {
	s := v.analyzer.PolarityScores(text)

	return Polarity{
		Negative: s.Negative,
		Neutral:  s.Neutral,
		Positive: s.Positive,
		Compound: s.Compound,
	}, nil
}
