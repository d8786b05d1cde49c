package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/text/language"
)

// Translation providers.
const (
	TranslationProviderGoogle = "google"
	TranslationProviderLLM    = "llm"
	TranslationProviderNone   = "none"
)

type Config struct {
	AppEnv      string   `env:"APP_ENV" envDefault:"local"`
	PostgresDSN string   `env:"POSTGRES_DSN,required"`
	HTTPPort    int      `env:"HTTP_PORT" envDefault:"8000"`
	HealthPort  int      `env:"HEALTH_PORT" envDefault:"8080"`
	CORSOrigins []string `env:"CORS_ALLOW_ORIGINS" envSeparator:"," envDefault:"*"`

	// Database pool
	DBMaxConnections    int32         `env:"DB_MAX_CONNECTIONS" envDefault:"10"`
	DBMinConnections    int32         `env:"DB_MIN_CONNECTIONS" envDefault:"1"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"5m"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"30s"`

	// Model store
	ModelDir           string        `env:"MODEL_DIR" envDefault:"./models"`
	NeuralModelName    string        `env:"NEURAL_MODEL_NAME" envDefault:"distilbert_sentiment"`
	NeuralInferenceURL string        `env:"NEURAL_INFERENCE_URL"`
	NeuralTimeout      time.Duration `env:"NEURAL_TIMEOUT" envDefault:"10s"`
	NeuralMaxLength    int           `env:"NEURAL_MAX_LENGTH" envDefault:"128"`
	BaselineModelFile  string        `env:"BASELINE_MODEL_FILE" envDefault:"baseline_model.json"`
	LexiconEnabled     bool          `env:"LEXICON_ENABLED" envDefault:"true"`
	PreferNeural       bool          `env:"PREFER_NEURAL" envDefault:"true"`

	// Analysis
	AnalyzeWorkers   int           `env:"ANALYZE_WORKERS" envDefault:"4"`
	AnalyzeTimeout   time.Duration `env:"ANALYZE_TIMEOUT" envDefault:"60s"`
	MaxBulkTexts     int           `env:"MAX_BULK_TEXTS" envDefault:"100"`
	MaxCSVRows       int           `env:"MAX_CSV_ROWS" envDefault:"1000"`
	MaxUploadBytes   int64         `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`
	HistoryPerBatch  int           `env:"HISTORY_PER_BATCH" envDefault:"10"`
	MaxScrapedTexts  int           `env:"MAX_SCRAPED_TEXTS" envDefault:"100"`
	DisplayTranslate bool          `env:"DISPLAY_TRANSLATE" envDefault:"true"`

	// Translation
	TranslationProvider string        `env:"TRANSLATION_PROVIDER" envDefault:"google"`
	TranslationTarget   string        `env:"TRANSLATION_TARGET" envDefault:"en"`
	TranslationTimeout  time.Duration `env:"TRANSLATION_TIMEOUT" envDefault:"10s"`
	TranslationRPS      float64       `env:"TRANSLATION_RPS" envDefault:"5"`
	TranslationCacheTTL time.Duration `env:"TRANSLATION_CACHE_TTL" envDefault:"168h"`
	GoogleTranslateURL  string        `env:"GOOGLE_TRANSLATE_URL" envDefault:"https://translate.googleapis.com/translate_a/single"`

	// LLM (OpenAI-compatible, OpenRouter by default)
	LLMAPIKey       string  `env:"LLM_API_KEY"`
	LLMBaseURL      string  `env:"LLM_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	LLMModel        string  `env:"LLM_MODEL" envDefault:"z-ai/glm-4.5-air:free"`
	LLMReferer      string  `env:"LLM_REFERER" envDefault:"http://localhost:3000"`
	LLMAppTitle     string  `env:"LLM_APP_TITLE" envDefault:"SentimentScope"`
	LLMRateLimitRPS float64 `env:"LLM_RATE_LIMIT_RPS" envDefault:"1"`

	// Embeddings for similar-history search
	EmbeddingAPIKey  string `env:"EMBEDDING_API_KEY"`
	EmbeddingBaseURL string `env:"EMBEDDING_BASE_URL" envDefault:"https://api.openai.com/v1"`
	EmbeddingModel   string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`

	// Content sources
	WebFetchRPS     float64       `env:"WEB_FETCH_RPS" envDefault:"2"`
	WebFetchTimeout time.Duration `env:"WEB_FETCH_TIMEOUT" envDefault:"30s"`
	YouTubeAPIKey   string        `env:"YOUTUBE_API_KEY"`
	YouTubeAPIURL   string        `env:"YOUTUBE_API_URL" envDefault:"https://www.googleapis.com/youtube/v3"`

	// Telegram bot mode
	BotToken      string  `env:"BOT_TOKEN"`
	BotAllowedIDs []int64 `env:"BOT_ALLOWED_IDS" envSeparator:","`

	// Maintenance
	CacheCleanupInterval time.Duration `env:"CACHE_CLEANUP_INTERVAL" envDefault:"1h"`
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	applyLegacyAliases(cfg)

	if err := cfg.normalizeTranslation(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyLegacyAliases maps variable names used by earlier deployments.
func applyLegacyAliases(cfg *Config) {
	if !hasEnv("LLM_API_KEY") {
		setStringFromEnv("OPENROUTER_API_KEY", &cfg.LLMAPIKey)
	}

	if !hasEnv("CORS_ALLOW_ORIGINS") {
		setListFromEnv("CORS_ORIGINS", &cfg.CORSOrigins)
	}

	if !hasEnv("HTTP_PORT") {
		setIntFromEnv("PORT", &cfg.HTTPPort)
	}
}

func (c *Config) normalizeTranslation() error {
	c.TranslationProvider = strings.ToLower(strings.TrimSpace(c.TranslationProvider))

	switch c.TranslationProvider {
	case TranslationProviderGoogle, TranslationProviderLLM, TranslationProviderNone:
	default:
		return fmt.Errorf("parsing environment config: unknown TRANSLATION_PROVIDER %q", c.TranslationProvider)
	}

	tag, err := language.Parse(c.TranslationTarget)
	if err != nil {
		return fmt.Errorf("parsing environment config: TRANSLATION_TARGET: %w", err)
	}

	base, _ := tag.Base()
	c.TranslationTarget = base.String()

	return nil
}

// LLMEnabled reports whether an LLM key is configured.
func (c *Config) LLMEnabled() bool {
	return strings.TrimSpace(c.LLMAPIKey) != ""
}

// EmbeddingsEnabled reports whether similar-history embeddings are configured.
func (c *Config) EmbeddingsEnabled() bool {
	return strings.TrimSpace(c.EmbeddingAPIKey) != ""
}

func hasEnv(key string) bool {
	_, ok := os.LookupEnv(key)
	return ok
}

func setStringFromEnv(key string, target *string) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return
	}

	val = strings.TrimSpace(val)
	if val == "" {
		return
	}

	*target = val
}

func setIntFromEnv(key string, target *int) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return
	}

	parsed, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return
	}

	*target = parsed
}

func setListFromEnv(key string, target *[]string) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return
	}

	var items []string

	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}

	if len(items) > 0 {
		*target = items
	}
}
