package sentiment

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/sentiment-scope/internal/core/sentiment/baseline"
)

func TestLoadTiers_NothingAvailable(t *testing.T) {
	logger := zerolog.Nop()

	tiers := LoadTiers(StoreConfig{ModelDir: t.TempDir(), NeuralModelName: "bert", BaselineFile: "baseline.json"}, &logger)

	assert.False(t, tiers.Neural.IsLoaded())
	assert.False(t, tiers.Classical.IsLoaded())
	assert.False(t, tiers.Lexicon.IsLoaded())
	assert.False(t, tiers.Any())
}

func TestLoadTiers_LexiconOnly(t *testing.T) {
	logger := zerolog.Nop()

	tiers := LoadTiers(StoreConfig{ModelDir: t.TempDir(), BaselineFile: "baseline.json", LexiconEnabled: true}, &logger)

	assert.True(t, tiers.Lexicon.IsLoaded())
	assert.True(t, tiers.Any())
}

func TestLoadTiers_Baseline(t *testing.T) {
	dir := t.TempDir()

	model, err := baseline.Fit(context.Background(), []baseline.Sample{
		{Text: "great product love it", Label: baseline.ClassPositive},
		{Text: "terrible product hate it", Label: baseline.ClassNegative},
		{Text: "it is a product", Label: baseline.ClassNeutral},
	}, baseline.FitOptions{NgramMax: 1, MinDF: 1, Epochs: 20, LearningRate: 1})
	require.NoError(t, err)
	require.NoError(t, model.Save(filepath.Join(dir, "baseline.json")))

	logger := zerolog.Nop()
	tiers := LoadTiers(StoreConfig{ModelDir: dir, BaselineFile: "baseline.json"}, &logger)

	assert.True(t, tiers.Classical.IsLoaded())
	assert.False(t, tiers.Neural.IsLoaded())
}

func TestLoadTiers_BrokenBaselineIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "baseline.json"), []byte("{not json"), 0o600))

	logger := zerolog.Nop()
	tiers := LoadTiers(StoreConfig{ModelDir: dir, BaselineFile: "baseline.json", LexiconEnabled: true}, &logger)

	assert.False(t, tiers.Classical.IsLoaded())
	assert.True(t, tiers.Lexicon.IsLoaded())
}

func TestLoadTiers_NeuralNeedsInferenceURL(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "bert"), 0o750))

	logger := zerolog.Nop()
	tiers := LoadTiers(StoreConfig{ModelDir: dir, NeuralModelName: "bert", BaselineFile: "baseline.json"}, &logger)

	assert.False(t, tiers.Neural.IsLoaded())
}
