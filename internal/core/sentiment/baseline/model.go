// Package baseline implements the classical tier: TF-IDF features and a
// multinomial logistic regression, stored as a single JSON document.
package baseline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/lueurxax/sentiment-scope/internal/core/domain"
)

// Class names recognised in a model file.
const (
	ClassNegative = "negative"
	ClassNeutral  = "neutral"
	ClassPositive = "positive"
)

var (
	// ErrInvalidModel is returned for model files with inconsistent shapes or classes.
	ErrInvalidModel = errors.New("invalid baseline model")
)

type modelFile struct {
	Classes    []string    `json:"classes"`
	Vectorizer *Vectorizer `json:"vectorizer"`
	Coef       [][]float64 `json:"coef"`
	Intercept  []float64   `json:"intercept"`
}

// Model is a trained classifier. It is immutable and safe for concurrent use.
type Model struct {
	classes    []string
	vectorizer *Vectorizer
	weights    *mat.Dense
	bias       *mat.VecDense

	negative, neutral, positive int
}

// LoadFile reads a model from a JSON file.
func LoadFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open baseline model: %w", err)
	}
	defer f.Close()

	return Read(f)
}

// Read decodes a model from r.
func Read(r io.Reader) (*Model, error) {
	var mf modelFile
	if err := json.NewDecoder(r).Decode(&mf); err != nil {
		return nil, fmt.Errorf("decode baseline model: %w", err)
	}

	return fromFile(mf)
}

func fromFile(mf modelFile) (*Model, error) {
	if mf.Vectorizer == nil {
		return nil, fmt.Errorf("%w: missing vectorizer", ErrInvalidModel)
	}

	k, v := len(mf.Classes), mf.Vectorizer.Size()
	if k == 0 || v == 0 {
		return nil, fmt.Errorf("%w: empty classes or vocabulary", ErrInvalidModel)
	}

	if len(mf.Coef) != k || len(mf.Intercept) != k {
		return nil, fmt.Errorf("%w: coef has %d rows, intercept %d, classes %d", ErrInvalidModel, len(mf.Coef), len(mf.Intercept), k)
	}

	weights := mat.NewDense(k, v, nil)

	for i, row := range mf.Coef {
		if len(row) != v {
			return nil, fmt.Errorf("%w: coef row %d has %d columns, want %d", ErrInvalidModel, i, len(row), v)
		}

		weights.SetRow(i, row)
	}

	m := &Model{
		classes:    mf.Classes,
		vectorizer: mf.Vectorizer,
		weights:    weights,
		bias:       mat.NewVecDense(k, append([]float64(nil), mf.Intercept...)),
		negative:   -1,
		neutral:    -1,
		positive:   -1,
	}

	for i, c := range mf.Classes {
		switch strings.ToLower(c) {
		case ClassNegative, "0", "neg":
			m.negative = i
		case ClassNeutral, "1", "neu":
			m.neutral = i
		case ClassPositive, "2", "pos":
			m.positive = i
		}
	}

	if m.negative < 0 || m.positive < 0 {
		return nil, fmt.Errorf("%w: classes %v need negative and positive", ErrInvalidModel, mf.Classes)
	}

	return m, nil
}

// Classes returns the class names in output order.
func (m *Model) Classes() []string {
	return m.classes
}

// Probabilities returns per-class probabilities in Classes order.
func (m *Model) Probabilities(text string) []float64 {
	x := m.vectorizer.Transform(text)

	var z mat.VecDense
	z.MulVec(m.weights, x)
	z.AddVec(&z, m.bias)

	return softmax(z.RawVector().Data)
}

// Predict implements the sentiment Predictor.
func (m *Model) Predict(_ context.Context, text string) (domain.Probabilities, error) {
	probs := m.Probabilities(text)

	p := domain.Probabilities{
		Negative: probs[m.negative],
		Positive: probs[m.positive],
	}

	if m.neutral >= 0 {
		p.Neutral = probs[m.neutral]
	}

	return p, nil
}

// Write encodes the model as JSON.
func (m *Model) Write(w io.Writer) error {
	k, _ := m.weights.Dims()

	coef := make([][]float64, k)
	for i := range coef {
		coef[i] = mat.Row(nil, i, m.weights)
	}

	enc := json.NewEncoder(w)

	return enc.Encode(modelFile{
		Classes:    m.classes,
		Vectorizer: m.vectorizer,
		Coef:       coef,
		Intercept:  append([]float64(nil), m.bias.RawVector().Data...),
	})
}

// Save writes the model to path.
func (m *Model) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create baseline model: %w", err)
	}

	if err := m.Write(f); err != nil {
		f.Close()
		return fmt.Errorf("write baseline model: %w", err)
	}

	return f.Close()
}

func softmax(z []float64) []float64 {
	out := make([]float64, len(z))
	copy(out, z)

	floats.AddConst(-floats.Max(out), out)

	for i, v := range out {
		out[i] = math.Exp(v)
	}

	floats.Scale(1/floats.Sum(out), out)

	return out
}
