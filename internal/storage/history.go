package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pgvector/pgvector-go"

	"github.com/lueurxax/sentiment-scope/internal/core/domain"
	apperrors "github.com/lueurxax/sentiment-scope/internal/core/errors"
)

const historyColumns = `id, text, sentiment, confidence, scores, model_used, analysis_type, created_at`

// InsertHistory stores one analysis and returns its id. A zero timestamp means now.
func (db *DB) InsertHistory(ctx context.Context, entry *domain.HistoryEntry) (string, error) {
	if entry == nil {
		return "", nil
	}

	id := entry.ID
	if id == "" {
		id = uuid.NewString()
	}

	ts := entry.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	scores, err := json.Marshal(entry.Scores)
	if err != nil {
		return "", fmt.Errorf("marshal scores: %w", err)
	}

	var embedding *pgvector.Vector

	if len(entry.Embedding) > 0 {
		v := pgvector.NewVector(entry.Embedding)
		embedding = &v
	}

	_, err = db.Pool.Exec(ctx, `
		INSERT INTO analysis_history (
			id,
			text,
			sentiment,
			confidence,
			scores,
			model_used,
			analysis_type,
			created_at,
			embedding
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		toUUID(id),
		SanitizeUTF8(entry.Text),
		string(entry.Sentiment),
		entry.Confidence,
		scores,
		string(entry.ModelUsed),
		string(entry.AnalysisType),
		toTimestamptz(ts),
		embedding,
	)
	if err != nil {
		return "", fmt.Errorf("insert history: %w", err)
	}

	return id, nil
}

// GetHistory returns one history row. A malformed id is ErrInvalidInput.
func (db *DB) GetHistory(ctx context.Context, id string) (*domain.HistoryEntry, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: history id %q", apperrors.ErrInvalidInput, id)
	}

	row := db.Pool.QueryRow(ctx, `SELECT `+historyColumns+` FROM analysis_history WHERE id = $1`, pgtype.UUID{Bytes: uid, Valid: true})

	entry, err := scanHistory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrHistoryNotFound, id)
		}

		return nil, fmt.Errorf("get history: %w", err)
	}

	return entry, nil
}

// ListHistory returns history rows newest first.
func (db *DB) ListHistory(ctx context.Context, filter domain.HistoryFilter) ([]domain.HistoryEntry, error) {
	query, args := buildHistoryQuery(filter)

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.HistoryEntry, 0)

	for rows.Next() {
		entry, err := scanHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}

		entries = append(entries, *entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}

	return entries, nil
}

// HistoryStats aggregates the whole history table.
func (db *DB) HistoryStats(ctx context.Context) (*domain.Stats, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT sentiment, analysis_type, COUNT(*)::bigint
		FROM analysis_history
		GROUP BY sentiment, analysis_type
	`)
	if err != nil {
		return nil, fmt.Errorf("history stats: %w", err)
	}
	defer rows.Close()

	stats := &domain.Stats{ByType: make(map[domain.AnalysisType]int, len(domain.AnalysisTypes))}

	for _, t := range domain.AnalysisTypes {
		stats.ByType[t] = 0
	}

	for rows.Next() {
		var (
			sentiment    string
			analysisType string
			count        int64
		)

		if err := rows.Scan(&sentiment, &analysisType, &count); err != nil {
			return nil, fmt.Errorf("scan history stats: %w", err)
		}

		n := int(count)
		stats.TotalAnalyses += n
		stats.ByType[domain.AnalysisType(analysisType)] += n

		switch domain.Label(sentiment) {
		case domain.LabelPositive:
			stats.SentimentDistribution.Positive += n
		case domain.LabelNegative:
			stats.SentimentDistribution.Negative += n
		case domain.LabelNeutral:
			stats.SentimentDistribution.Neutral += n
		case domain.LabelMixed:
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history stats: %w", err)
	}

	return stats, nil
}

// SimilarHistory returns the rows whose embeddings are closest to embedding by cosine distance.
func (db *DB) SimilarHistory(ctx context.Context, embedding []float32, limit int) ([]domain.SimilarEntry, error) {
	if len(embedding) == 0 {
		return []domain.SimilarEntry{}, nil
	}

	if limit <= 0 {
		limit = DefaultSimilarLimit
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT `+historyColumns+`,
		       1 - (embedding <=> $1::vector) AS similarity
		FROM analysis_history
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1::vector
		LIMIT $2
	`, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("similar history: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.SimilarEntry, 0, limit)

	for rows.Next() {
		var (
			id           pgtype.UUID
			text         string
			sentiment    string
			confidence   float64
			scores       []byte
			modelUsed    string
			analysisType string
			createdAt    pgtype.Timestamptz
			similarity   float64
		)

		if err := rows.Scan(&id, &text, &sentiment, &confidence, &scores, &modelUsed, &analysisType, &createdAt, &similarity); err != nil {
			return nil, fmt.Errorf("scan similar history: %w", err)
		}

		entry, err := buildHistoryEntry(id, text, sentiment, confidence, scores, modelUsed, analysisType, createdAt)
		if err != nil {
			return nil, err
		}

		entries = append(entries, domain.SimilarEntry{HistoryEntry: *entry, Similarity: similarity})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate similar history: %w", err)
	}

	return entries, nil
}

// buildHistoryQuery renders the listing query for filter. The limit is clamped
// to [1, MaxHistoryLimit] with DefaultHistoryLimit for unset values.
func buildHistoryQuery(filter domain.HistoryFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if !filter.Since.IsZero() {
		args = append(args, filter.Since)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}

	if !filter.Until.IsZero() {
		args = append(args, filter.Until)
		conds = append(conds, fmt.Sprintf("created_at < $%d", len(args)))
	}

	var b strings.Builder

	b.WriteString(`SELECT ` + historyColumns + ` FROM analysis_history`)

	if len(conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}

	args = append(args, ClampHistoryLimit(filter.Limit))
	fmt.Fprintf(&b, " ORDER BY created_at DESC LIMIT $%d", len(args))

	return b.String(), args
}

// ClampHistoryLimit applies the default and maximum listing size.
func ClampHistoryLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		return MaxHistoryLimit
	default:
		return limit
	}
}

func scanHistory(row pgx.Row) (*domain.HistoryEntry, error) {
	var (
		id           pgtype.UUID
		text         string
		sentiment    string
		confidence   float64
		scores       []byte
		modelUsed    string
		analysisType string
		createdAt    pgtype.Timestamptz
	)

	if err := row.Scan(&id, &text, &sentiment, &confidence, &scores, &modelUsed, &analysisType, &createdAt); err != nil {
		return nil, err //nolint:wrapcheck // callers wrap with context
	}

	return buildHistoryEntry(id, text, sentiment, confidence, scores, modelUsed, analysisType, createdAt)
}

func buildHistoryEntry(id pgtype.UUID, text, sentiment string, confidence float64, scores []byte, modelUsed, analysisType string, createdAt pgtype.Timestamptz) (*domain.HistoryEntry, error) {
	entry := &domain.HistoryEntry{
		ID:           fromUUID(id),
		Text:         text,
		Sentiment:    domain.Label(sentiment),
		Confidence:   confidence,
		ModelUsed:    domain.ModelTag(modelUsed),
		AnalysisType: domain.AnalysisType(analysisType),
		Timestamp:    fromTimestamptz(createdAt),
	}

	if len(scores) > 0 {
		if err := json.Unmarshal(scores, &entry.Scores); err != nil {
			return nil, fmt.Errorf("decode scores for %s: %w", entry.ID, err)
		}
	}

	return entry, nil
}
