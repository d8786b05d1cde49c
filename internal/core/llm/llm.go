// Package llm wraps an OpenAI-compatible chat and embeddings API (OpenRouter by
// default) for review summaries, fallback translation and history embeddings.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	apperrors "github.com/lueurxax/sentiment-scope/internal/core/errors"
	"github.com/lueurxax/sentiment-scope/internal/platform/circuit"
	"github.com/lueurxax/sentiment-scope/internal/platform/observability"
)

// Config configures the chat client.
type Config struct {
	APIKey       string
	BaseURL      string
	Model        string
	Referer      string
	AppTitle     string
	RateLimitRPS float64
	Timeout      time.Duration
}

// Client is a chat-completion client guarded by a rate limiter and a circuit breaker.
type Client struct {
	api         *openai.Client
	model       string
	logger      *zerolog.Logger
	rateLimiter *rate.Limiter
	breaker     *circuit.Breaker
}

// New creates a client. Callers check for an empty API key before constructing one.
func New(cfg Config, logger *zerolog.Logger) *Client {
	if logger == nil {
		nopLogger := zerolog.Nop()
		logger = &nopLogger
	}

	rps := cfg.RateLimitRPS
	if rps <= 0 {
		rps = 1
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Client{
		api:         openai.NewClientWithConfig(clientConfig(cfg.APIKey, cfg.BaseURL, cfg.Referer, cfg.AppTitle, cfg.Timeout)),
		model:       model,
		logger:      logger,
		rateLimiter: rate.NewLimiter(rate.Limit(rps), rateLimiterBurst),
		breaker:     circuit.New(circuit.Config{Name: "llm"}, logger),
	}
}

func clientConfig(apiKey, baseURL, referer, title string, timeout time.Duration) openai.ClientConfig {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}

	headers := map[string]string{}
	if referer != "" {
		headers[headerReferer] = referer
	}

	if title != "" {
		headers[headerTitle] = title
	}

	cfg.HTTPClient = &http.Client{
		Timeout:   timeout,
		Transport: &headerTransport{base: http.DefaultTransport, headers: headers},
	}

	return cfg
}

// headerTransport adds fixed headers (OpenRouter attribution) to every request.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if len(t.headers) == 0 {
		return t.base.RoundTrip(req)
	}

	clone := req.Clone(req.Context())
	for k, v := range t.headers {
		clone.Header.Set(k, v)
	}

	return t.base.RoundTrip(clone)
}

// Model returns the chat model name.
func (c *Client) Model() string {
	return c.model
}

// Summarize asks the model for a short summary of what people say about a page.
func (c *Client) Summarize(ctx context.Context, title, description string, texts []string) (string, error) {
	return c.complete(ctx, operationSummarize, summarySystemPrompt, buildSummaryContent(title, description, texts))
}

// TranslateText translates text into targetLanguage and returns only the translation.
func (c *Client) TranslateText(ctx context.Context, text, targetLanguage string) (string, error) {
	prompt := fmt.Sprintf(translatePromptFmt, targetLanguage, targetLanguage)

	out, err := c.complete(ctx, operationTranslate, prompt, text)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(out), nil
}

func (c *Client) complete(ctx context.Context, operation, system, user string) (string, error) {
	if err := c.breaker.Check(); err != nil {
		return "", err
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf(errRateLimiter, err)
	}

	start := time.Now()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})

	observability.LLMRequestDuration.WithLabelValues(c.model, operation).Observe(time.Since(start).Seconds())

	if err != nil {
		c.breaker.RecordFailure()

		return "", fmt.Errorf(errChatCompletion, err)
	}

	c.breaker.RecordSuccess()

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", apperrors.ErrEmptyResponse
	}

	c.logger.Debug().
		Str(logKeyModel, c.model).
		Str(logKeyOperation, operation).
		Int(logKeyTotalTokens, resp.Usage.TotalTokens).
		Msg("llm completion")

	return resp.Choices[0].Message.Content, nil
}

func buildSummaryContent(title, description string, texts []string) string {
	if len(texts) > maxSummaryTexts {
		texts = texts[:maxSummaryTexts]
	}

	return fmt.Sprintf(summaryContentFmt, title, description) + strings.Join(texts, "\n")
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}

	return string(runes[:max]) + "..."
}
