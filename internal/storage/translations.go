package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	apperrors "github.com/lueurxax/sentiment-scope/internal/core/errors"
)

// GetTranslation returns a cached translation that has not expired.
func (db *DB) GetTranslation(ctx context.Context, key string) (string, error) {
	var translated string

	err := db.Pool.QueryRow(ctx, `
		SELECT translated_text
		FROM translation_cache
		WHERE cache_key = $1 AND expires_at > now()
	`, key).Scan(&translated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.ErrCacheNotFound
		}

		return "", fmt.Errorf("get translation: %w", err)
	}

	return translated, nil
}

// SaveTranslation upserts a translation that expires after ttl.
func (db *DB) SaveTranslation(ctx context.Context, key, targetLang, translated string, ttl time.Duration) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO translation_cache (cache_key, target_language, translated_text, created_at, expires_at)
		VALUES ($1, $2, $3, now(), now() + $4::interval)
		ON CONFLICT (cache_key) DO UPDATE SET
			translated_text = EXCLUDED.translated_text,
			created_at = EXCLUDED.created_at,
			expires_at = EXCLUDED.expires_at
	`, key, targetLang, SanitizeUTF8(translated), ttl)
	if err != nil {
		return fmt.Errorf("save translation: %w", err)
	}

	return nil
}

// CleanupExpiredTranslations removes expired cache rows and returns how many were deleted.
func (db *DB) CleanupExpiredTranslations(ctx context.Context) (int64, error) {
	tag, err := db.Pool.Exec(ctx, `
		DELETE FROM translation_cache
		WHERE expires_at < now()
	`)
	if err != nil {
		return 0, fmt.Errorf("delete expired translations: %w", err)
	}

	return tag.RowsAffected(), nil
}
