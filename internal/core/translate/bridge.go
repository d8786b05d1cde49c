// Package translate routes non-ASCII text through a translation provider before
// normalization. Translation is best-effort: the pipeline keeps the original text
// whenever a provider fails.
package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lueurxax/sentiment-scope/internal/platform/observability"
)

// SourceAuto asks the provider to detect the source language.
const SourceAuto = "auto"

// Provider translates text between languages.
type Provider interface {
	Name() string
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// TranslationError reports a failed provider call.
type TranslationError struct {
	Provider string
	Err      error
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("translation via %s: %v", e.Provider, e.Err)
}

func (e *TranslationError) Unwrap() error {
	return e.Err
}

// Bridge decides whether text needs translation and calls the provider.
type Bridge struct {
	provider Provider
	target   string
	logger   *zerolog.Logger
}

// NewBridge creates a bridge translating into target. A nil provider disables translation.
func NewBridge(provider Provider, target string, logger *zerolog.Logger) *Bridge {
	return &Bridge{
		provider: provider,
		target:   target,
		logger:   logger,
	}
}

// Target returns the working language.
func (b *Bridge) Target() string {
	return b.target
}

// Translate returns raw unchanged when it is blank or pure ASCII, otherwise the
// provider's translation into the working language.
func (b *Bridge) Translate(ctx context.Context, raw string) (string, error) {
	if strings.TrimSpace(raw) == "" || IsASCII(raw) || b.provider == nil {
		return raw, nil
	}

	translated, err := b.provider.Translate(ctx, raw, SourceAuto, b.target)
	if err != nil {
		observability.TranslationRequests.WithLabelValues(b.provider.Name(), "error").Inc()
		return "", &TranslationError{Provider: b.provider.Name(), Err: err}
	}

	observability.TranslationRequests.WithLabelValues(b.provider.Name(), "ok").Inc()

	if strings.TrimSpace(translated) == "" {
		return raw, nil
	}

	return translated, nil
}

// MaybeTranslate is Translate with failures logged and the original text returned.
func (b *Bridge) MaybeTranslate(ctx context.Context, raw string) string {
	translated, err := b.Translate(ctx, raw)
	if err != nil {
		b.logger.Warn().Err(err).Msg("translation failed, using original text")
		return raw
	}

	return translated
}

// IsASCII reports whether s contains only ASCII bytes.
func IsASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}

	return true
}
