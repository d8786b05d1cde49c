package db

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/sentiment-scope/internal/core/domain"
	apperrors "github.com/lueurxax/sentiment-scope/internal/core/errors"
)

func TestBuildHistoryQuery(t *testing.T) {
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		filter    domain.HistoryFilter
		wantWhere string
		wantArgs  []any
	}{
		{
			name:     "no filter",
			filter:   domain.HistoryFilter{},
			wantArgs: []any{DefaultHistoryLimit},
		},
		{
			name:      "since only",
			filter:    domain.HistoryFilter{Since: since, Limit: 10},
			wantWhere: " WHERE created_at >= $1 ORDER BY created_at DESC LIMIT $2",
			wantArgs:  []any{since, 10},
		},
		{
			name:      "range",
			filter:    domain.HistoryFilter{Since: since, Until: until, Limit: 5000},
			wantWhere: " WHERE created_at >= $1 AND created_at < $2 ORDER BY created_at DESC LIMIT $3",
			wantArgs:  []any{since, until, MaxHistoryLimit},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := buildHistoryQuery(tt.filter)

			assert.Contains(t, query, "FROM analysis_history")
			assert.Contains(t, query, "ORDER BY created_at DESC")

			if tt.wantWhere != "" {
				assert.Contains(t, query, tt.wantWhere)
			} else {
				assert.NotContains(t, query, "WHERE")
			}

			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestClampHistoryLimit(t *testing.T) {
	assert.Equal(t, DefaultHistoryLimit, ClampHistoryLimit(0))
	assert.Equal(t, DefaultHistoryLimit, ClampHistoryLimit(-3))
	assert.Equal(t, 7, ClampHistoryLimit(7))
	assert.Equal(t, MaxHistoryLimit, ClampHistoryLimit(MaxHistoryLimit+1))
}

func TestBuildHistoryEntry(t *testing.T) {
	id := toUUID("3f0c8f2e-0d7b-4a43-9a55-6d2b7c7f1a10")
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	entry, err := buildHistoryEntry(id, "great", "Positive", 0.9,
		[]byte(`{"negative":0.1,"neutral":0,"positive":0.9}`),
		"Transformer", "single", pgtype.Timestamptz{Time: created, Valid: true})
	require.NoError(t, err)

	assert.Equal(t, "3f0c8f2e-0d7b-4a43-9a55-6d2b7c7f1a10", entry.ID)
	assert.Equal(t, domain.LabelPositive, entry.Sentiment)
	assert.Equal(t, domain.ModelTransformer, entry.ModelUsed)
	assert.Equal(t, domain.AnalysisSingle, entry.AnalysisType)
	assert.InDelta(t, 0.9, entry.Scores["positive"], 1e-9)
	assert.Equal(t, created, entry.Timestamp)

	_, err = buildHistoryEntry(id, "x", "Neutral", 0, []byte(`{`), "None", "single", pgtype.Timestamptz{})
	require.Error(t, err)
}

func TestHelpers(t *testing.T) {
	assert.False(t, toUUID("not-a-uuid").Valid)
	assert.Equal(t, "", fromUUID(pgtype.UUID{}))
	assert.Equal(t, "ab", SanitizeUTF8("a\xffb"))
	assert.Equal(t, "ab", SanitizeUTF8("a\x00b"))
	assert.False(t, toTimestamptz(time.Time{}).Valid)
	assert.True(t, fromTimestamptz(pgtype.Timestamptz{}).IsZero())
}

func TestGetHistory_MalformedID(t *testing.T) {
	_, err := (&DB{}).GetHistory(context.Background(), "not-a-uuid")
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
