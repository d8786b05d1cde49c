package sentiment

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"github.com/lueurxax/sentiment-scope/internal/core/textnorm"
)

const (
	maxFrequencyWords = 50
	minWordLength     = 3
)

var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {}, "at": {},
	"to": {}, "for": {}, "of": {}, "with": {}, "is": {}, "was": {}, "are": {}, "were": {},
	"been": {}, "be": {}, "have": {}, "has": {}, "had": {}, "do": {}, "does": {}, "did": {},
	"will": {}, "would": {}, "should": {}, "could": {}, "may": {}, "might": {}, "can": {},
	"this": {}, "that": {}, "these": {}, "those": {}, "i": {}, "you": {}, "he": {}, "she": {},
	"it": {}, "we": {}, "they": {}, "my": {}, "your": {}, "his": {}, "her": {}, "its": {},
	"our": {}, "their": {},
}

// WordCount is one entry of a FrequencyTable.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// FrequencyTable is ordered by descending count, ties by first occurrence.
// It marshals as a JSON object that keeps that order.
type FrequencyTable []WordCount

// MarshalJSON encodes the table as an ordered object.
func (t FrequencyTable) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, wc := range t {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(wc.Word)
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')

		val, err := json.Marshal(wc.Count)
		if err != nil {
			return nil, err
		}

		buf.Write(val)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// Get returns the count for word.
func (t FrequencyTable) Get(word string) (int, bool) {
	for _, wc := range t {
		if wc.Word == word {
			return wc.Count, true
		}
	}

	return 0, false
}

// WordFrequencies counts content words across texts after normalization
// (no translation) and returns the most common ones.
func WordFrequencies(texts []string) FrequencyTable {
	if len(texts) == 0 {
		return FrequencyTable{}
	}

	normalized := make([]string, 0, len(texts))
	for _, t := range texts {
		normalized = append(normalized, textnorm.Normalize(t))
	}

	counts := make(map[string]int)
	order := make(map[string]int)

	for _, word := range strings.Fields(strings.Join(normalized, " ")) {
		if len(word) < minWordLength {
			continue
		}

		if _, skip := stopwords[word]; skip {
			continue
		}

		if _, seen := order[word]; !seen {
			order[word] = len(order)
		}

		counts[word]++
	}

	table := make(FrequencyTable, 0, len(counts))
	for word, n := range counts {
		table = append(table, WordCount{Word: word, Count: n})
	}

	sort.Slice(table, func(i, j int) bool {
		if table[i].Count != table[j].Count {
			return table[i].Count > table[j].Count
		}

		return order[table[i].Word] < order[table[j].Word]
	})

	if len(table) > maxFrequencyWords {
		table = table[:maxFrequencyWords]
	}

	return table
}
