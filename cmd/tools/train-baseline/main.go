// Command train-baseline fits the classical tier from a labelled CSV file with
// "text" and "label" columns and writes the model JSON read at startup.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/lueurxax/sentiment-scope/internal/core/sentiment/baseline"
	"github.com/lueurxax/sentiment-scope/internal/core/textnorm"
)

const (
	defaultOutPath = "models/baseline_model.json"
	outputDirPerm  = 0o750
	holdoutShare   = 0.1
	shuffleSeed    = 42
)

var errMissingColumns = errors.New("CSV must contain 'text' and 'label' columns")

// labelAliases maps common dataset encodings onto the three classes.
var labelAliases = map[string]string{
	"negative": baseline.ClassNegative,
	"neg":      baseline.ClassNegative,
	"-1":       baseline.ClassNegative,
	"0":        baseline.ClassNegative,
	"neutral":  baseline.ClassNeutral,
	"neu":      baseline.ClassNeutral,
	"1":        baseline.ClassNeutral,
	"positive": baseline.ClassPositive,
	"pos":      baseline.ClassPositive,
	"2":        baseline.ClassPositive,
}

func main() {
	in := flag.String("in", "", "Labelled CSV with text and label columns")
	outPath := flag.String("out", defaultOutPath, "Output model path")
	defaults := baseline.DefaultFitOptions()
	ngramMax := flag.Int("ngram-max", defaults.NgramMax, "Largest n-gram size")
	minDF := flag.Int("min-df", defaults.MinDF, "Minimum document frequency")
	maxFeatures := flag.Int("max-features", defaults.MaxFeatures, "Vocabulary cap")
	epochs := flag.Int("epochs", defaults.Epochs, "Gradient descent epochs")

	flag.Parse()

	if *in == "" {
		fmt.Fprintln(os.Stderr, "-in is required")
		os.Exit(1)
	}

	samples, skipped, err := readSamples(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read samples: %v\n", err)
		os.Exit(1)
	}

	train, holdout := split(samples)

	opts := defaults
	opts.NgramMax = *ngramMax
	opts.MinDF = *minDF
	opts.MaxFeatures = *maxFeatures
	opts.Epochs = *epochs

	model, err := baseline.Fit(context.Background(), train, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to fit model: %v\n", err)
		os.Exit(1)
	}

	cleanPath := filepath.Clean(*outPath)
	if err := os.MkdirAll(filepath.Dir(cleanPath), outputDirPerm); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	if err := model.Save(cleanPath); err != nil {
		fmt.Fprintf(os.Stderr, "failed to save model: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("trained on %d samples (%d skipped), train accuracy %.3f", len(train), skipped, model.Accuracy(train))

	if len(holdout) > 0 {
		fmt.Printf(", holdout accuracy %.3f on %d", model.Accuracy(holdout), len(holdout))
	}

	fmt.Printf("\nwrote %s\n", cleanPath)
}

func readSamples(path string) ([]baseline.Sample, int, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, 0, fmt.Errorf("open: %w", err)
	}

	defer func() {
		_ = f.Close()
	}()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}

	textCol, labelCol := -1, -1

	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "text":
			textCol = i
		case "label", "sentiment":
			labelCol = i
		}
	}

	if textCol < 0 || labelCol < 0 {
		return nil, 0, errMissingColumns
	}

	var (
		samples []baseline.Sample
		skipped int
	)

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, 0, fmt.Errorf("read row: %w", err)
		}

		if textCol >= len(record) || labelCol >= len(record) {
			skipped++
			continue
		}

		label, ok := labelAliases[strings.ToLower(strings.TrimSpace(record[labelCol]))]
		text := textnorm.Normalize(record[textCol])

		if !ok || text == "" {
			skipped++
			continue
		}

		samples = append(samples, baseline.Sample{Text: text, Label: label})
	}

	return samples, skipped, nil
}

// split shuffles deterministically and holds out a share of samples for evaluation.
func split(samples []baseline.Sample) (train, holdout []baseline.Sample) {
	rng := rand.New(rand.NewPCG(shuffleSeed, shuffleSeed)) //nolint:gosec // deterministic shuffle, not security sensitive
	rng.Shuffle(len(samples), func(i, j int) { samples[i], samples[j] = samples[j], samples[i] })

	n := int(float64(len(samples)) * holdoutShare)

	return samples[n:], samples[:n]
}
