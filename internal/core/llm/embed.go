package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	apperrors "github.com/lueurxax/sentiment-scope/internal/core/errors"
	"github.com/lueurxax/sentiment-scope/internal/platform/circuit"
	"github.com/lueurxax/sentiment-scope/internal/platform/observability"
)

// EmbedderConfig configures an Embedder.
type EmbedderConfig struct {
	APIKey       string
	BaseURL      string
	Model        string
	RateLimitRPS float64
	Timeout      time.Duration
	// Dimensions defaults to EmbeddingDimensions.
	Dimensions int
}

// Embedder turns analysed texts into vectors for similarity search over history.
type Embedder struct {
	api         *openai.Client
	model       openai.EmbeddingModel
	dimensions  int
	rateLimiter *rate.Limiter
	breaker     *circuit.Breaker
}

// NewEmbedder creates an embedder.
func NewEmbedder(cfg EmbedderConfig, logger *zerolog.Logger) *Embedder {
	model := cfg.Model
	if model == "" {
		model = DefaultEmbeddingModel
	}

	rps := cfg.RateLimitRPS
	if rps <= 0 {
		rps = 5
	}

	dimensions := cfg.Dimensions
	if dimensions <= 0 {
		dimensions = EmbeddingDimensions
	}

	return &Embedder{
		api:         openai.NewClientWithConfig(clientConfig(cfg.APIKey, cfg.BaseURL, "", "", cfg.Timeout)),
		model:       openai.EmbeddingModel(model),
		dimensions:  dimensions,
		rateLimiter: rate.NewLimiter(rate.Limit(rps), rateLimiterBurst),
		breaker:     circuit.New(circuit.Config{Name: "embeddings"}, logger),
	}
}

// Embed returns the embedding of text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := e.breaker.Check(); err != nil {
		return nil, err
	}

	if err := e.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf(errRateLimiter, err)
	}

	start := time.Now()

	req := openai.EmbeddingRequest{
		Input: []string{truncate(text, maxEmbedRunes)},
		Model: e.model,
	}

	if strings.HasPrefix(string(e.model), shortenableEmbeddingPrefix) {
		req.Dimensions = e.dimensions
	}

	resp, err := e.api.CreateEmbeddings(ctx, req)

	observability.LLMRequestDuration.WithLabelValues(string(e.model), operationEmbed).Observe(time.Since(start).Seconds())

	if err != nil {
		e.breaker.RecordFailure()

		return nil, fmt.Errorf(errEmbeddings, err)
	}

	e.breaker.RecordSuccess()

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, apperrors.ErrEmptyResponse
	}

	vec := resp.Data[0].Embedding
	if len(vec) != e.dimensions {
		return nil, fmt.Errorf("%w: embedding has %d dimensions, want %d", apperrors.ErrUnexpectedShape, len(vec), e.dimensions)
	}

	return vec, nil
}
