package translate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/sentiment-scope/internal/platform/observability"
)

// Cache stores translations keyed by a hash of source text and target language.
type Cache interface {
	GetTranslation(ctx context.Context, key string) (string, error)
	SaveTranslation(ctx context.Context, key, targetLang, translated string, ttl time.Duration) error
}

// CachedProvider wraps a provider with a read-through cache.
type CachedProvider struct {
	next   Provider
	cache  Cache
	ttl    time.Duration
	logger *zerolog.Logger
}

// NewCachedProvider wraps next. A nil cache returns next unchanged.
func NewCachedProvider(next Provider, cache Cache, ttl time.Duration, logger *zerolog.Logger) Provider {
	if cache == nil {
		return next
	}

	return &CachedProvider{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// Name implements Provider.
func (p *CachedProvider) Name() string {
	return p.next.Name()
}

// Translate implements Provider.
func (p *CachedProvider) Translate(ctx context.Context, text, source, target string) (string, error) {
	key := CacheKey(text, target)

	if cached, err := p.cache.GetTranslation(ctx, key); err == nil && cached != "" {
		observability.TranslationCacheLookups.WithLabelValues("hit").Inc()
		return cached, nil
	}

	observability.TranslationCacheLookups.WithLabelValues("miss").Inc()

	translated, err := p.next.Translate(ctx, text, source, target)
	if err != nil {
		return "", err
	}

	if err := p.cache.SaveTranslation(ctx, key, target, translated, p.ttl); err != nil {
		p.logger.Warn().Err(err).Msg("failed to save translation to cache")
	}

	return translated, nil
}

// CacheKey derives the cache key for text translated into target.
func CacheKey(text, target string) string {
	sum := sha256.Sum256([]byte(target + "\x00" + text))
	return hex.EncodeToString(sum[:])
}
