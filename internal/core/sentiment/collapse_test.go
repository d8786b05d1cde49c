package sentiment

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/sentiment-scope/internal/core/domain"
)

func TestCollapse(t *testing.T) {
	tests := []struct {
		name     string
		probs    domain.Probabilities
		want     domain.Label
		wantConf float64
	}{
		{
			name:     "neutral mass is ignored",
			probs:    domain.Probabilities{Negative: 0.3, Neutral: 0.9, Positive: 0.7},
			want:     domain.LabelPositive,
			wantConf: 0.7,
		},
		{
			name:     "tie goes negative",
			probs:    domain.Probabilities{Negative: 0.4, Neutral: 0.2, Positive: 0.4},
			want:     domain.LabelNegative,
			wantConf: 0.4,
		},
		{
			name:     "no polar mass",
			probs:    domain.Probabilities{Neutral: 1},
			want:     domain.LabelNegative,
			wantConf: 0.5,
		},
		{
			name:     "negative wins",
			probs:    domain.Probabilities{Negative: 0.8, Neutral: 0.1, Positive: 0.1},
			want:     domain.LabelNegative,
			wantConf: 0.8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Collapse(tt.probs, domain.ModelBaseline)
			assert.Equal(t, tt.want, got.Sentiment)
			assert.InDelta(t, tt.wantConf, got.Confidence, 1e-9)
			assert.Zero(t, got.Scores.Neutral)
			assert.InDelta(t, tt.probs.Negative, got.Scores.Negative, 1e-9)
			assert.InDelta(t, tt.probs.Positive, got.Scores.Positive, 1e-9)
			assert.Equal(t, domain.ModelBaseline, got.ModelUsed)
		})
	}
}

func TestVaderLexicon(t *testing.T) {
	lex := NewVaderLexicon()

	pos, err := lex.Polarity("this is great and i love it")
	require.NoError(t, err)
	assert.Greater(t, pos.Compound, LexiconThreshold)
	assert.Equal(t, domain.LabelPositive, FromPolarity(pos).Sentiment)

	neg, err := lex.Polarity("terrible awful experience")
	require.NoError(t, err)
	assert.Less(t, neg.Compound, -LexiconThreshold)
	assert.Equal(t, domain.LabelNegative, FromPolarity(neg).Sentiment)

	neu, err := lex.Polarity("the table is brown")
	require.NoError(t, err)
	assert.Equal(t, domain.LabelNeutral, FromPolarity(neu).Sentiment)
}

func TestWordFrequencies(t *testing.T) {
	got := WordFrequencies([]string{"the cat sat", "the cat ran fast"})

	require.NotEmpty(t, got)
	assert.Equal(t, WordCount{Word: "cat", Count: 2}, got[0])

	_, ok := got.Get("the")
	assert.False(t, ok)

	n, ok := got.Get("fast")
	require.True(t, ok)
	assert.Equal(t, 1, n)

	words := make([]string, 0, len(got))
	for _, wc := range got {
		words = append(words, wc.Word)
	}

	assert.Equal(t, []string{"cat", "sat", "ran", "fast"}, words)
}

func TestWordFrequencies_Empty(t *testing.T) {
	assert.Empty(t, WordFrequencies(nil))
	assert.Empty(t, WordFrequencies([]string{"", "a an"}))
}

func TestWordFrequencies_TopFifty(t *testing.T) {
	texts := make([]string, 0, 60)
	for i := 0; i < 60; i++ {
		texts = append(texts, fmt.Sprintf("word%c%c", 'a'+i/26, 'a'+i%26))
	}

	got := WordFrequencies(texts)
	assert.Len(t, got, 50)
	assert.Equal(t, "wordaa", got[0].Word)
}

func TestWordFrequencies_ShortWordsDropped(t *testing.T) {
	got := WordFrequencies([]string{"ok go run runs"})

	_, ok := got.Get("ok")
	assert.False(t, ok)

	_, ok = got.Get("run")
	assert.True(t, ok)
}

func TestFrequencyTable_MarshalJSON(t *testing.T) {
	table := FrequencyTable{{Word: "zebra", Count: 3}, {Word: "apple", Count: 1}}

	data, err := json.Marshal(table)
	require.NoError(t, err)
	assert.JSONEq(t, `{"zebra":3,"apple":1}`, string(data))
	assert.Equal(t, `{"zebra":3,"apple":1}`, string(data))

	data, err = json.Marshal(FrequencyTable{})
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
}
