package baseline

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var tokenPattern = regexp.MustCompile(`\b\w\w+\b`)

// Vectorizer is a TF-IDF vectorizer over word n-grams.
type Vectorizer struct {
	Vocabulary  map[string]int `json:"vocabulary"`
	IDF         []float64      `json:"idf"`
	NgramMin    int            `json:"ngram_min"`
	NgramMax    int            `json:"ngram_max"`
	SublinearTF bool           `json:"sublinear_tf"`
}

// Size is the number of features.
func (v *Vectorizer) Size() int {
	return len(v.IDF)
}

// Terms extracts the n-gram terms of text in order of appearance.
func (v *Vectorizer) Terms(text string) []string {
	words := tokenPattern.FindAllString(strings.ToLower(text), -1)

	lo, hi := v.NgramMin, v.NgramMax
	if lo < 1 {
		lo = 1
	}

	if hi < lo {
		hi = lo
	}

	var terms []string

	for n := lo; n <= hi; n++ {
		for i := 0; i+n <= len(words); i++ {
			terms = append(terms, strings.Join(words[i:i+n], " "))
		}
	}

	return terms
}

// Transform returns the l2-normalized TF-IDF vector of text.
func (v *Vectorizer) Transform(text string) *mat.VecDense {
	data := make([]float64, v.Size())

	for _, term := range v.Terms(text) {
		if idx, ok := v.Vocabulary[term]; ok && idx < len(data) {
			data[idx]++
		}
	}

	for i, tf := range data {
		if tf == 0 {
			continue
		}

		if v.SublinearTF {
			tf = 1 + math.Log(tf)
		}

		data[i] = tf * v.IDF[i]
	}

	if n := floats.Norm(data, 2); n > 0 {
		floats.Scale(1/n, data)
	}

	return mat.NewVecDense(len(data), data)
}

// fitVectorizer builds the vocabulary and smoothed idf from a corpus.
func fitVectorizer(texts []string, ngramMax, minDF, maxFeatures int, sublinear bool) *Vectorizer {
	v := &Vectorizer{NgramMin: 1, NgramMax: ngramMax, SublinearTF: sublinear}

	df := make(map[string]int)

	for _, text := range texts {
		seen := make(map[string]struct{})

		for _, term := range v.Terms(text) {
			if _, ok := seen[term]; ok {
				continue
			}

			seen[term] = struct{}{}
			df[term]++
		}
	}

	terms := make([]string, 0, len(df))
	for term, n := range df {
		if n >= minDF {
			terms = append(terms, term)
		}
	}

	sort.Slice(terms, func(i, j int) bool {
		if df[terms[i]] != df[terms[j]] {
			return df[terms[i]] > df[terms[j]]
		}

		return terms[i] < terms[j]
	})

	if maxFeatures > 0 && len(terms) > maxFeatures {
		terms = terms[:maxFeatures]
	}

	sort.Strings(terms)

	n := float64(len(texts))
	v.Vocabulary = make(map[string]int, len(terms))
	v.IDF = make([]float64, len(terms))

	for i, term := range terms {
		v.Vocabulary[term] = i
		v.IDF[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	return v
}
