// Package analysis implements the user-facing analysis operations on top of the
// sentiment pipeline: single texts, batches, CSV uploads and URLs, plus history.
package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/lueurxax/sentiment-scope/internal/core/domain"
	apperrors "github.com/lueurxax/sentiment-scope/internal/core/errors"
	"github.com/lueurxax/sentiment-scope/internal/core/links"
	"github.com/lueurxax/sentiment-scope/internal/core/sentiment"
	"github.com/lueurxax/sentiment-scope/internal/platform/observability"
	"github.com/lueurxax/sentiment-scope/internal/platform/worker"
)

const (
	resultTextRunes  = 200
	historyTextRunes = 500

	defaultMaxBulkTexts    = 100
	defaultMaxCSVRows      = 1000
	defaultHistoryPerBatch = 10

	logFieldType = "analysis_type"
	logFieldURL  = "url"
)

// Classifier is the tiered sentiment pipeline.
type Classifier interface {
	Analyze(ctx context.Context, raw string, preferNeural bool) (domain.SentimentResult, error)
}

// DisplayTranslator renders non-English texts for display. It never fails.
type DisplayTranslator interface {
	MaybeTranslate(ctx context.Context, raw string) string
}

// Summarizer writes the narrative summary of a URL analysis.
type Summarizer interface {
	Summarize(ctx context.Context, title, description string, texts []string) (string, error)
}

// ContentFetcher turns a URL into texts.
type ContentFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*links.Content, error)
}

// Embedder produces vectors for similar-history search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Repository persists analysis history.
type Repository interface {
	InsertHistory(ctx context.Context, entry *domain.HistoryEntry) (string, error)
	GetHistory(ctx context.Context, id string) (*domain.HistoryEntry, error)
	ListHistory(ctx context.Context, filter domain.HistoryFilter) ([]domain.HistoryEntry, error)
	HistoryStats(ctx context.Context) (*domain.Stats, error)
	SimilarHistory(ctx context.Context, embedding []float32, limit int) ([]domain.SimilarEntry, error)
}

// Config tunes the service limits.
type Config struct {
	PreferNeural    bool
	Workers         int
	Timeout         time.Duration
	MaxBulkTexts    int
	MaxCSVRows      int
	HistoryPerBatch int
}

// Deps are the service collaborators. Summarizer, Embedder, Display and Fetcher are optional.
type Deps struct {
	Classifier Classifier
	Repository Repository
	Fetcher    ContentFetcher
	Summarizer Summarizer
	Embedder   Embedder
	Display    DisplayTranslator
}

// Service runs analyses and records them in history.
type Service struct {
	cfg    Config
	deps   Deps
	pool   *worker.Pool
	logger *zerolog.Logger
}

// New creates a service.
func New(cfg Config, deps Deps, logger *zerolog.Logger) *Service {
	if cfg.MaxBulkTexts <= 0 {
		cfg.MaxBulkTexts = defaultMaxBulkTexts
	}

	if cfg.MaxCSVRows <= 0 {
		cfg.MaxCSVRows = defaultMaxCSVRows
	}

	if cfg.HistoryPerBatch <= 0 {
		cfg.HistoryPerBatch = defaultHistoryPerBatch
	}

	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Service{
		cfg:    cfg,
		deps:   deps,
		pool:   worker.NewPool(cfg.Workers),
		logger: logger,
	}
}

// AnalyzeText classifies one text and stores it in history.
func (s *Service) AnalyzeText(ctx context.Context, text string) (*TextResult, error) {
	observability.AnalysesTotal.WithLabelValues(string(domain.AnalysisSingle)).Inc()

	res, err := s.classify(ctx, text)
	if err != nil {
		return nil, err
	}

	out := &TextResult{Text: truncateRunes(text, resultTextRunes), SentimentResult: res}

	s.record(ctx, historyEntry(truncateRunes(text, historyTextRunes), res, domain.AnalysisSingle), s.embeddingFor(ctx, text))

	return out, nil
}

// AnalyzeBulk classifies up to MaxBulkTexts texts.
func (s *Service) AnalyzeBulk(ctx context.Context, texts []string) (*BatchResult, error) {
	if len(texts) > s.cfg.MaxBulkTexts {
		return nil, fmt.Errorf("%w: maximum %d texts allowed", apperrors.ErrTooManyTexts, s.cfg.MaxBulkTexts)
	}

	observability.AnalysesTotal.WithLabelValues(string(domain.AnalysisBulk)).Inc()

	return s.analyzeBatch(ctx, texts, domain.AnalysisBulk)
}

// SimilarHistory returns history rows semantically close to text.
func (s *Service) SimilarHistory(ctx context.Context, text string, limit int) ([]domain.SimilarEntry, error) {
	if s.deps.Embedder == nil {
		return nil, fmt.Errorf("similar history: %w", apperrors.ErrClientDisabled)
	}

	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text is required", apperrors.ErrInvalidInput)
	}

	emb, err := s.deps.Embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	entries, err := s.deps.Repository.SimilarHistory(ctx, emb, limit)
	if err != nil {
		return nil, fmt.Errorf("similar history: %w", err)
	}

	return entries, nil
}

// History lists recent analyses.
func (s *Service) History(ctx context.Context, filter domain.HistoryFilter) ([]domain.HistoryEntry, error) {
	entries, err := s.deps.Repository.ListHistory(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	return entries, nil
}

// HistoryEntry returns one stored analysis.
func (s *Service) HistoryEntry(ctx context.Context, id string) (*domain.HistoryEntry, error) {
	entry, err := s.deps.Repository.GetHistory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}

	return entry, nil
}

// Stats aggregates the whole history.
func (s *Service) Stats(ctx context.Context) (*domain.Stats, error) {
	stats, err := s.deps.Repository.HistoryStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("history stats: %w", err)
	}

	return stats, nil
}

type outcome struct {
	text string
	res  domain.SentimentResult
	err  error
}

func (s *Service) analyzeBatch(ctx context.Context, texts []string, kind domain.AnalysisType) (*BatchResult, error) {
	outcomes, err := worker.Map(ctx, s.pool, texts, func(ctx context.Context, text string) outcome {
		res, err := s.classify(ctx, text)
		return outcome{text: text, res: res, err: err}
	})
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", kind, err)
	}

	results := make([]TextResult, 0, len(outcomes))

	for _, o := range outcomes {
		if o.err != nil {
			return nil, o.err
		}

		results = append(results, TextResult{Text: truncateRunes(o.text, resultTextRunes), SentimentResult: o.res})
	}

	for _, r := range results[:min(len(results), s.cfg.HistoryPerBatch)] {
		s.record(ctx, historyEntry(r.Text, r.SentimentResult, kind), nil)
	}

	s.logger.Info().Str(logFieldType, string(kind)).Int("texts", len(results)).Msg("batch analyzed")

	return &BatchResult{
		Results:         results,
		Summary:         Summarize(results),
		WordFrequencies: sentiment.WordFrequencies(texts),
	}, nil
}

func (s *Service) classify(ctx context.Context, text string) (domain.SentimentResult, error) {
	var res domain.SentimentResult

	err := worker.RunWithTimeout(ctx, s.cfg.Timeout, func(ctx context.Context) error {
		var err error

		res, err = s.deps.Classifier.Analyze(ctx, text, s.cfg.PreferNeural)

		return err
	})
	if err != nil {
		return domain.SentimentResult{}, fmt.Errorf("classify: %w", err)
	}

	return res, nil
}

func (s *Service) embeddingFor(ctx context.Context, text string) []float32 {
	if s.deps.Embedder == nil || strings.TrimSpace(text) == "" {
		return nil
	}

	emb, err := s.deps.Embedder.Embed(ctx, text)
	if err != nil {
		s.logger.Warn().Err(err).Msg("embedding failed, storing history without it")
		return nil
	}

	return emb
}

// record writes one history row. Failures are logged and never fail the analysis.
func (s *Service) record(ctx context.Context, entry *domain.HistoryEntry, embedding []float32) {
	if s.deps.Repository == nil {
		return
	}

	entry.Embedding = embedding

	_, err := s.deps.Repository.InsertHistory(ctx, entry)
	if err != nil && entry.Embedding != nil {
		s.logger.Warn().Err(err).Str(logFieldType, string(entry.AnalysisType)).Msg("history insert with embedding failed, retrying without it")

		entry.Embedding = nil
		_, err = s.deps.Repository.InsertHistory(ctx, entry)
	}

	if err != nil {
		observability.HistoryWriteErrors.Inc()
		s.logger.Error().Err(err).Str(logFieldType, string(entry.AnalysisType)).Msg("failed to save history")
	}
}

func historyEntry(text string, res domain.SentimentResult, kind domain.AnalysisType) *domain.HistoryEntry {
	return &domain.HistoryEntry{
		Text:         text,
		Sentiment:    res.Sentiment,
		Confidence:   res.Confidence,
		Scores:       res.Scores.Map(),
		ModelUsed:    res.ModelUsed,
		AnalysisType: kind,
		Timestamp:    time.Now().UTC(),
	}
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}

	return string([]rune(s)[:n])
}
