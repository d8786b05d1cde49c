package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	apperrors "github.com/lueurxax/sentiment-scope/internal/core/errors"
	"github.com/lueurxax/sentiment-scope/internal/platform/circuit"
)

const (
	providerGoogle       = "google"
	googleLimiterBurst   = 5
	googleMaxBodyBytes   = 1 << 20
	defaultGoogleTimeout = 10 * time.Second
)

// ErrGoogleStatus indicates a non-200 response from the translate endpoint.
var ErrGoogleStatus = errors.New("google translate returned non-200 status")

// GoogleConfig configures the Google provider.
type GoogleConfig struct {
	Endpoint string
	Timeout  time.Duration
	RPS      float64
}

// GoogleProvider calls the public translate_a/single endpoint used by browser extensions.
type GoogleProvider struct {
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
	breaker  *circuit.Breaker
}

// NewGoogleProvider creates the provider.
func NewGoogleProvider(cfg GoogleConfig, logger *zerolog.Logger) *GoogleProvider {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultGoogleTimeout
	}

	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}

	return &GoogleProvider{
		endpoint: cfg.Endpoint,
		client:   &http.Client{Timeout: cfg.Timeout},
		limiter:  rate.NewLimiter(limit, googleLimiterBurst),
		breaker:  circuit.New(circuit.Config{Name: "google-translate"}, logger),
	}
}

// Name implements Provider.
func (p *GoogleProvider) Name() string {
	return providerGoogle
}

// Translate implements Provider.
func (p *GoogleProvider) Translate(ctx context.Context, text, source, target string) (string, error) {
	if err := p.breaker.Check(); err != nil {
		return "", err
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter wait: %w", err)
	}

	translated, err := p.call(ctx, text, source, target)
	if err != nil {
		p.breaker.RecordFailure()
		return "", err
	}

	p.breaker.RecordSuccess()

	return translated, nil
}

func (p *GoogleProvider) call(ctx context.Context, text, source, target string) (string, error) {
	query := url.Values{}
	query.Set("client", "gtx")
	query.Set("sl", source)
	query.Set("tl", target)
	query.Set("dt", "t")

	form := url.Values{}
	form.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint+"?"+query.Encode(), strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=utf-8")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %d", ErrGoogleStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, googleMaxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}

	return parseGoogleResponse(body)
}

// parseGoogleResponse joins the translated segments of [[["seg","orig",...],...],...].
func parseGoogleResponse(body []byte) (string, error) {
	var payload []json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if len(payload) == 0 {
		return "", apperrors.ErrEmptyResponse
	}

	var segments [][]any
	if err := json.Unmarshal(payload[0], &segments); err != nil {
		return "", fmt.Errorf("%w: segments: %v", apperrors.ErrUnexpectedShape, err)
	}

	var sb strings.Builder

	for _, segment := range segments {
		if len(segment) == 0 {
			continue
		}

		if part, ok := segment[0].(string); ok {
			sb.WriteString(part)
		}
	}

	if sb.Len() == 0 {
		return "", apperrors.ErrEmptyResponse
	}

	return sb.String(), nil
}
