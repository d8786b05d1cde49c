package baseline

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Sample is one labelled training text.
type Sample struct {
	Text  string
	Label string
}

// FitOptions controls training.
type FitOptions struct {
	NgramMax     int
	MinDF        int
	MaxFeatures  int
	Epochs       int
	LearningRate float64
	L2           float64
}

// DefaultFitOptions mirrors a unigram+bigram sublinear TF-IDF with mild regularization.
func DefaultFitOptions() FitOptions {
	return FitOptions{
		NgramMax:     2,
		MinDF:        1,
		MaxFeatures:  20000,
		Epochs:       300,
		LearningRate: 1.0,
		L2:           1e-4,
	}
}

// Fit trains a model with full-batch gradient descent on the softmax cross-entropy.
// Samples must use the class names negative, neutral and positive.
func Fit(ctx context.Context, samples []Sample, opts FitOptions) (*Model, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: no training samples", ErrInvalidModel)
	}

	classes := []string{ClassNegative, ClassNeutral, ClassPositive}
	classIdx := map[string]int{ClassNegative: 0, ClassNeutral: 1, ClassPositive: 2}

	texts := make([]string, len(samples))
	labels := make([]int, len(samples))

	for i, s := range samples {
		idx, ok := classIdx[s.Label]
		if !ok {
			return nil, fmt.Errorf("%w: unknown label %q in sample %d", ErrInvalidModel, s.Label, i)
		}

		texts[i] = s.Text
		labels[i] = idx
	}

	if opts.NgramMax < 1 {
		opts.NgramMax = 1
	}

	vec := fitVectorizer(texts, opts.NgramMax, opts.MinDF, opts.MaxFeatures, true)
	if vec.Size() == 0 {
		return nil, fmt.Errorf("%w: empty vocabulary", ErrInvalidModel)
	}

	features := make([]*mat.VecDense, len(texts))
	for i, t := range texts {
		features[i] = vec.Transform(t)
	}

	k, v := len(classes), vec.Size()
	weights := mat.NewDense(k, v, nil)
	bias := mat.NewVecDense(k, nil)

	gradW := mat.NewDense(k, v, nil)
	gradB := mat.NewVecDense(k, nil)
	n := float64(len(samples))

	for epoch := 0; epoch < opts.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		gradW.Zero()
		gradB.Zero()

		for i, x := range features {
			var z mat.VecDense
			z.MulVec(weights, x)
			z.AddVec(&z, bias)

			p := mat.NewVecDense(k, softmax(z.RawVector().Data))
			p.SetVec(labels[i], p.AtVec(labels[i])-1)

			gradW.RankOne(gradW, 1, p, x)
			gradB.AddVec(gradB, p)
		}

		gradW.Scale(opts.LearningRate/n, gradW)
		gradB.ScaleVec(opts.LearningRate/n, gradB)

		weights.Scale(1-opts.LearningRate*opts.L2, weights)
		weights.Sub(weights, gradW)
		bias.SubVec(bias, gradB)
	}

	return &Model{
		classes:    classes,
		vectorizer: vec,
		weights:    weights,
		bias:       bias,
		negative:   0,
		neutral:    1,
		positive:   2,
	}, nil
}

// Accuracy returns the share of samples whose most probable class matches the label.
func (m *Model) Accuracy(samples []Sample) float64 {
	if len(samples) == 0 {
		return 0
	}

	correct := 0

	for _, s := range samples {
		probs := m.Probabilities(s.Text)

		best := 0
		for i := range probs {
			if probs[i] > probs[best] {
				best = i
			}
		}

		if m.classes[best] == s.Label {
			correct++
		}
	}

	return float64(correct) / float64(len(samples))
}
