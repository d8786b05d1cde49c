// Package app provides the main application bootstrap and runtime orchestration.
//
// The App type wires together all dependencies and exposes methods to run
// different operational modes:
//
//   - API mode: JSON analysis API plus the translation cache janitor
//   - Bot mode: Telegram bot answering with the sentiment of each message
//
// Both modes share one classifier pipeline, built once at startup.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/sentiment-scope/internal/analysis"
	"github.com/lueurxax/sentiment-scope/internal/core/links"
	"github.com/lueurxax/sentiment-scope/internal/core/llm"
	"github.com/lueurxax/sentiment-scope/internal/core/sentiment"
	"github.com/lueurxax/sentiment-scope/internal/core/translate"
	"github.com/lueurxax/sentiment-scope/internal/httpapi"
	"github.com/lueurxax/sentiment-scope/internal/platform/config"
	"github.com/lueurxax/sentiment-scope/internal/platform/observability"
	"github.com/lueurxax/sentiment-scope/internal/platform/worker"
	db "github.com/lueurxax/sentiment-scope/internal/storage"
	"github.com/lueurxax/sentiment-scope/internal/telegrambot"
)

const (
	errBotInit = "bot initialization failed: %w"

	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
	janitorPoll       = time.Minute

	logFieldProvider = "provider"
	logFieldPort     = "port"
)

var errMissingBotToken = errors.New("BOT_TOKEN is empty")

// App holds the application dependencies and provides methods to run different modes.
type App struct {
	cfg      *config.Config
	database *db.DB
	logger   *zerolog.Logger

	pipeline *sentiment.Pipeline
	service  *analysis.Service
}

// New creates a new App and builds the analysis stack.
func New(cfg *config.Config, database *db.DB, logger *zerolog.Logger) *App {
	a := &App{
		cfg:      cfg,
		database: database,
		logger:   logger,
	}

	var llmClient *llm.Client
	if cfg.LLMEnabled() {
		llmClient = llm.New(llm.Config{
			APIKey:       cfg.LLMAPIKey,
			BaseURL:      cfg.LLMBaseURL,
			Model:        cfg.LLMModel,
			Referer:      cfg.LLMReferer,
			AppTitle:     cfg.LLMAppTitle,
			RateLimitRPS: cfg.LLMRateLimitRPS,
		}, logger)
	}

	bridge := translate.NewBridge(a.translationProvider(llmClient), cfg.TranslationTarget, logger)

	tiers := sentiment.LoadTiers(sentiment.StoreConfig{
		ModelDir:           cfg.ModelDir,
		NeuralModelName:    cfg.NeuralModelName,
		NeuralInferenceURL: cfg.NeuralInferenceURL,
		NeuralTimeout:      cfg.NeuralTimeout,
		NeuralMaxLength:    cfg.NeuralMaxLength,
		BaselineFile:       cfg.BaselineModelFile,
		LexiconEnabled:     cfg.LexiconEnabled,
	}, logger)

	a.pipeline = sentiment.NewPipeline(tiers, bridge, logger)

	deps := analysis.Deps{
		Classifier: a.pipeline,
		Repository: database,
		Fetcher:    a.contentFetcher(),
	}

	if cfg.DisplayTranslate {
		deps.Display = bridge
	}

	if llmClient != nil {
		deps.Summarizer = llmClient
	}

	if cfg.EmbeddingsEnabled() {
		deps.Embedder = llm.NewEmbedder(llm.EmbedderConfig{
			APIKey:  cfg.EmbeddingAPIKey,
			BaseURL: cfg.EmbeddingBaseURL,
			Model:   cfg.EmbeddingModel,
		}, logger)
	}

	a.service = analysis.New(analysis.Config{
		PreferNeural:    cfg.PreferNeural,
		Workers:         cfg.AnalyzeWorkers,
		Timeout:         cfg.AnalyzeTimeout,
		MaxBulkTexts:    cfg.MaxBulkTexts,
		MaxCSVRows:      cfg.MaxCSVRows,
		HistoryPerBatch: cfg.HistoryPerBatch,
	}, deps, logger)

	return a
}

// translationProvider picks the configured provider, wrapped in the database cache.
// It returns nil when translation is disabled.
func (a *App) translationProvider(llmClient *llm.Client) translate.Provider {
	var provider translate.Provider

	switch a.cfg.TranslationProvider {
	case config.TranslationProviderGoogle:
		provider = translate.NewGoogleProvider(translate.GoogleConfig{
			Endpoint: a.cfg.GoogleTranslateURL,
			Timeout:  a.cfg.TranslationTimeout,
			RPS:      a.cfg.TranslationRPS,
		}, a.logger)
	case config.TranslationProviderLLM:
		if llmClient == nil {
			a.logger.Warn().Msg("LLM translation requested but LLM_API_KEY is empty, translation disabled")
			return nil
		}

		provider = translate.NewLLMProvider(llmClient)
	default:
		return nil
	}

	a.logger.Info().Str(logFieldProvider, provider.Name()).Msg("translation enabled")

	return translate.NewCachedProvider(provider, a.database, a.cfg.TranslationCacheTTL, a.logger)
}

func (a *App) contentFetcher() *links.Fetcher {
	var videos links.VideoSource
	if a.cfg.YouTubeAPIKey != "" {
		videos = links.NewYouTubeClient(a.cfg.YouTubeAPIURL, a.cfg.YouTubeAPIKey, a.cfg.WebFetchTimeout)
	}

	pages := links.NewWebFetcher(a.cfg.WebFetchRPS, a.cfg.WebFetchTimeout)

	return links.NewFetcher(pages, videos, a.cfg.MaxScrapedTexts, a.logger)
}

// StartHealthServer starts the health check and metrics server.
func (a *App) StartHealthServer(ctx context.Context) error {
	srv := observability.NewServer(a.database, a.tierStatus, a.cfg.HealthPort, a.logger)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("health server start: %w", err)
	}

	return nil
}

func (a *App) tierStatus() map[string]bool {
	out := make(map[string]bool)

	for tag, loaded := range a.pipeline.Tiers().Status() {
		out[string(tag)] = loaded
	}

	return out
}

// RunAPI serves the analysis API and purges the translation cache until ctx is canceled.
func (a *App) RunAPI(ctx context.Context) error {
	handler := httpapi.NewHandler(a.service, httpapi.Options{
		CORSOrigins:    a.cfg.CORSOrigins,
		MaxUploadBytes: a.cfg.MaxUploadBytes,
	}, a.logger)

	mux := http.NewServeMux()
	mux.Handle(httpapi.Prefix+"/", handler)
	mux.Handle(httpapi.Prefix, handler)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.HTTPPort),
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go a.runJanitor(ctx)

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		//nolint:errcheck,contextcheck // shutdown is best-effort, non-inherited context intentional
		_ = srv.Shutdown(shutdownCtx)
	}()

	a.logger.Info().Int(logFieldPort, a.cfg.HTTPPort).Msg("API server starting")

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api server error: %w", err)
	}

	return ctx.Err()
}

// RunBot runs the Telegram bot until ctx is canceled.
func (a *App) RunBot(ctx context.Context) error {
	if a.cfg.BotToken == "" {
		return fmt.Errorf(errBotInit, errMissingBotToken)
	}

	b, err := telegrambot.New(a.cfg.BotToken, a.cfg.BotAllowedIDs, a.service, a.logger)
	if err != nil {
		return fmt.Errorf(errBotInit, err)
	}

	go a.runJanitor(ctx)

	return b.Run(ctx)
}

// runJanitor purges expired translation cache rows.
func (a *App) runJanitor(ctx context.Context) {
	err := worker.Loop(ctx, worker.Config{
		Name:         "janitor",
		PollInterval: janitorPoll,
		Logger:       a.logger,
		PeriodicTasks: []worker.PeriodicTask{
			{
				Name:     "translation_cache_cleanup",
				Interval: a.cfg.CacheCleanupInterval,
				Run:      a.cleanupTranslations,
			},
		},
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Error().Err(err).Msg("janitor stopped")
	}
}

func (a *App) cleanupTranslations(ctx context.Context) {
	deleted, err := a.database.CleanupExpiredTranslations(ctx)
	if err != nil {
		a.logger.Warn().Err(err).Msg("translation cache cleanup failed")
		return
	}

	observability.TranslationCachePurged.Add(float64(deleted))

	if deleted > 0 {
		a.logger.Info().Int64("deleted", deleted).Msg("expired translations purged")
	}
}
