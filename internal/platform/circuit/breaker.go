// Package circuit implements a consecutive-failure circuit breaker shared by the
// network-backed collaborators (translation, neural inference, LLM).
package circuit

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/lueurxax/sentiment-scope/internal/core/errors"
)

const (
	defaultThreshold  = 5
	defaultResetAfter = time.Minute
)

// Config configures a Breaker.
type Config struct {
	Name       string
	Threshold  int
	ResetAfter time.Duration
}

// Breaker opens after Threshold consecutive failures and stays open for ResetAfter.
type Breaker struct {
	name                string
	threshold           int
	resetAfter          time.Duration
	consecutiveFailures int
	openUntil           time.Time
	now                 func() time.Time
	mu                  sync.Mutex
	logger              *zerolog.Logger
}

// New creates a breaker. Zero values fall back to 5 failures / 1 minute.
func New(cfg Config, logger *zerolog.Logger) *Breaker {
	if cfg.Threshold <= 0 {
		cfg.Threshold = defaultThreshold
	}

	if cfg.ResetAfter <= 0 {
		cfg.ResetAfter = defaultResetAfter
	}

	return &Breaker{
		name:       cfg.Name,
		threshold:  cfg.Threshold,
		resetAfter: cfg.ResetAfter,
		now:        time.Now,
		logger:     logger,
	}
}

// Check returns an error if the circuit is open.
func (b *Breaker) Check() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.now().Before(b.openUntil) {
		return fmt.Errorf("%s: %w until %v", b.name, apperrors.ErrCircuitBreakerOpen, b.openUntil)
	}

	return nil
}

// RecordSuccess resets the failure count.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutiveFailures = 0
}

// RecordFailure records a failed call and opens the circuit if threshold is reached.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutiveFailures++

	if b.consecutiveFailures >= b.threshold {
		b.openUntil = b.now().Add(b.resetAfter)

		if b.logger != nil {
			b.logger.Warn().
				Str("breaker", b.name).
				Int("consecutive_failures", b.consecutiveFailures).
				Time("open_until", b.openUntil).
				Msg("circuit breaker opened")
		}
	}
}

// IsOpen returns true if the circuit is currently open.
func (b *Breaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.now().Before(b.openUntil)
}

// Reset clears the breaker state.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutiveFailures = 0
	b.openUntil = time.Time{}
}
