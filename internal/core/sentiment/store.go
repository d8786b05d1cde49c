package sentiment

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/sentiment-scope/internal/core/sentiment/baseline"
	"github.com/lueurxax/sentiment-scope/internal/core/sentiment/neural"
)

// StoreConfig locates model artifacts.
type StoreConfig struct {
	ModelDir           string
	NeuralModelName    string
	NeuralInferenceURL string
	NeuralTimeout      time.Duration
	NeuralMaxLength    int
	BaselineFile       string
	LexiconEnabled     bool
}

// LoadTiers loads every tier it can. Missing or broken artifacts are logged and
// leave the corresponding slot unloaded; they never fail startup.
func LoadTiers(cfg StoreConfig, logger *zerolog.Logger) Tiers {
	tiers := Tiers{
		Neural:    Unloaded[Predictor](),
		Classical: Unloaded[Predictor](),
		Lexicon:   Unloaded[LexiconScorer](),
	}

	if m, err := loadNeural(cfg, logger); err != nil {
		logger.Warn().Err(err).Msg("transformer model not loaded")
	} else if m != nil {
		tiers.Neural = Loaded[Predictor](m)
		logger.Info().Str(logFieldTier, "transformer").Msg("model loaded")
	}

	if m, err := loadBaseline(cfg); err != nil {
		logger.Warn().Err(err).Msg("baseline model not loaded")
	} else if m != nil {
		tiers.Classical = Loaded[Predictor](m)
		logger.Info().Str(logFieldTier, "baseline").Msg("model loaded")
	}

	if cfg.LexiconEnabled {
		tiers.Lexicon = Loaded[LexiconScorer](NewVaderLexicon())
		logger.Info().Str(logFieldTier, "lexicon").Msg("model loaded")
	}

	if !tiers.Any() {
		logger.Warn().Msg("no sentiment tier available, every result will be the neutral default")
	}

	return tiers
}

func loadNeural(cfg StoreConfig, logger *zerolog.Logger) (*neural.Model, error) {
	dir := filepath.Join(cfg.ModelDir, cfg.NeuralModelName)

	if !dirExists(dir) {
		logger.Info().Str("path", dir).Msg("transformer model directory not found")
		return nil, nil //nolint:nilnil // absent artifact is not an error
	}

	if cfg.NeuralInferenceURL == "" {
		logger.Info().Msg("transformer inference URL not configured")
		return nil, nil //nolint:nilnil // absent endpoint is not an error
	}

	return neural.Load(dir, neural.Config{
		ModelName:    cfg.NeuralModelName,
		InferenceURL: cfg.NeuralInferenceURL,
		Timeout:      cfg.NeuralTimeout,
		MaxLength:    cfg.NeuralMaxLength,
	}, logger)
}

func loadBaseline(cfg StoreConfig) (*baseline.Model, error) {
	path := cfg.BaselineFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(cfg.ModelDir, path)
	}

	m, err := baseline.LoadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil //nolint:nilnil // absent artifact is not an error
	}

	return m, err
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
