package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/sentiment-scope/internal/analysis"
	"github.com/lueurxax/sentiment-scope/internal/core/domain"
	apperrors "github.com/lueurxax/sentiment-scope/internal/core/errors"
)

type fakeAnalyzer struct {
	textFn    func(text string) (*analysis.TextResult, error)
	bulkFn    func(texts []string) (*analysis.BatchResult, error)
	csvFn     func(body string) (*analysis.BatchResult, error)
	urlFn     func(rawURL string) (*analysis.URLResult, error)
	historyFn func(filter domain.HistoryFilter) ([]domain.HistoryEntry, error)
	entryFn   func(id string) (*domain.HistoryEntry, error)
	similarFn func(text string, limit int) ([]domain.SimilarEntry, error)
	statsFn   func() (*domain.Stats, error)
}

func (f fakeAnalyzer) AnalyzeText(_ context.Context, text string) (*analysis.TextResult, error) {
	return f.textFn(text)
}

func (f fakeAnalyzer) AnalyzeBulk(_ context.Context, texts []string) (*analysis.BatchResult, error) {
	return f.bulkFn(texts)
}

func (f fakeAnalyzer) AnalyzeCSV(_ context.Context, r io.Reader) (*analysis.BatchResult, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	return f.csvFn(string(body))
}

func (f fakeAnalyzer) AnalyzeURL(_ context.Context, rawURL string) (*analysis.URLResult, error) {
	return f.urlFn(rawURL)
}

func (f fakeAnalyzer) History(_ context.Context, filter domain.HistoryFilter) ([]domain.HistoryEntry, error) {
	return f.historyFn(filter)
}

func (f fakeAnalyzer) HistoryEntry(_ context.Context, id string) (*domain.HistoryEntry, error) {
	return f.entryFn(id)
}

func (f fakeAnalyzer) SimilarHistory(_ context.Context, text string, limit int) ([]domain.SimilarEntry, error) {
	return f.similarFn(text, limit)
}

func (f fakeAnalyzer) Stats(context.Context) (*domain.Stats, error) {
	return f.statsFn()
}

func newTestHandler(svc Analyzer) *Handler {
	logger := zerolog.Nop()
	return NewHandler(svc, Options{CORSOrigins: []string{"http://localhost:3000"}}, &logger)
}

func serve(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func decodeDetail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body.Detail
}

func TestIndex(t *testing.T) {
	rec := serve(t, newTestHandler(fakeAnalyzer{}), httptest.NewRequest(http.MethodGet, "/api/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"SentimentScope API"`)
	assert.Contains(t, rec.Body.String(), "/api/analyze/text")
}

func TestAnalyzeText(t *testing.T) {
	svc := fakeAnalyzer{textFn: func(text string) (*analysis.TextResult, error) {
		assert.Equal(t, "I love it", text)

		return &analysis.TextResult{Text: text, SentimentResult: domain.SentimentResult{
			Sentiment:  domain.LabelPositive,
			Confidence: 0.97,
			Scores:     domain.Scores{Negative: 0.03, Positive: 0.97},
			ModelUsed:  domain.ModelTransformer,
		}}, nil
	}}

	req := httptest.NewRequest(http.MethodPost, "/api/analyze/text", strings.NewReader(`{"text":"I love it"}`))
	rec := serve(t, newTestHandler(svc), req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, contentTypeJSON, rec.Header().Get(contentTypeHeader))

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "I love it", got["text"])
	assert.Equal(t, "Positive", got["sentiment"])
	assert.Equal(t, "Transformer", got["model_used"])
	assert.Contains(t, got, "scores")
}

func TestAnalyzeText_Errors(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		body       string
		err        error
		wantStatus int
	}{
		{name: "wrong method", method: http.MethodGet, wantStatus: http.StatusMethodNotAllowed},
		{name: "bad json", method: http.MethodPost, body: `{"text":`, wantStatus: http.StatusBadRequest},
		{name: "invalid input", method: http.MethodPost, body: `{"text":"x"}`, err: apperrors.ErrInvalidInput, wantStatus: http.StatusBadRequest},
		{name: "internal", method: http.MethodPost, body: `{"text":"x"}`, err: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := fakeAnalyzer{textFn: func(string) (*analysis.TextResult, error) { return nil, tt.err }}

			rec := serve(t, newTestHandler(svc), httptest.NewRequest(tt.method, "/api/analyze/text", strings.NewReader(tt.body)))
			require.Equal(t, tt.wantStatus, rec.Code)
			assert.NotEmpty(t, decodeDetail(t, rec))

			if tt.wantStatus == http.StatusInternalServerError {
				assert.Equal(t, errMsgInternal, decodeDetail(t, rec))
			}
		})
	}
}

func TestAnalyzeBulk(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		svc := fakeAnalyzer{bulkFn: func(texts []string) (*analysis.BatchResult, error) {
			return &analysis.BatchResult{Results: make([]analysis.TextResult, len(texts))}, nil
		}}

		rec := serve(t, newTestHandler(svc), httptest.NewRequest(http.MethodPost, "/api/analyze/bulk", strings.NewReader(`{"texts":["a","b"]}`)))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"results"`)
		assert.Contains(t, rec.Body.String(), `"word_frequencies"`)
	})

	t.Run("too many", func(t *testing.T) {
		svc := fakeAnalyzer{bulkFn: func([]string) (*analysis.BatchResult, error) {
			return nil, fmt.Errorf("%w: maximum 100 texts allowed", apperrors.ErrTooManyTexts)
		}}

		rec := serve(t, newTestHandler(svc), httptest.NewRequest(http.MethodPost, "/api/analyze/bulk", strings.NewReader(`{"texts":[]}`)))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeDetail(t, rec), "maximum 100 texts allowed")
	})
}

func multipartCSV(t *testing.T, field, content string) *http.Request {
	t.Helper()

	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "reviews.csv")
	require.NoError(t, err)

	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/analyze/csv", &buf)
	req.Header.Set(contentTypeHeader, mw.FormDataContentType())

	return req
}

func TestAnalyzeCSV(t *testing.T) {
	svc := fakeAnalyzer{csvFn: func(body string) (*analysis.BatchResult, error) {
		if !strings.HasPrefix(body, "text") {
			return nil, apperrors.ErrMissingTextColumn
		}

		return &analysis.BatchResult{Results: []analysis.TextResult{{Text: "great"}}}, nil
	}}
	h := newTestHandler(svc)

	rec := serve(t, h, multipartCSV(t, "file", "text\ngreat\n"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, h, multipartCSV(t, "file", "body\ngreat\n"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "CSV must contain 'text' column", decodeDetail(t, rec))

	rec = serve(t, h, multipartCSV(t, "upload", "text\ngreat\n"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errMsgFileMissing, decodeDetail(t, rec))
}

func TestAnalyzeURL(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "ok", wantStatus: http.StatusOK},
		{name: "invalid url", err: apperrors.ErrInvalidURL, wantStatus: http.StatusBadRequest},
		{name: "comments unavailable", err: apperrors.ErrCommentsUnavailable, wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := fakeAnalyzer{urlFn: func(rawURL string) (*analysis.URLResult, error) {
				if tt.err != nil {
					return nil, tt.err
				}

				return &analysis.URLResult{AISummary: "fine", Metadata: analysis.Metadata{Title: rawURL}}, nil
			}}

			req := httptest.NewRequest(http.MethodPost, "/api/analyze/url", strings.NewReader(`{"url":"https://example.com"}`))
			rec := serve(t, newTestHandler(svc), req)
			require.Equal(t, tt.wantStatus, rec.Code)

			if tt.err == nil {
				assert.Contains(t, rec.Body.String(), `"ai_summary":"fine"`)
			}
		})
	}
}

func TestHistory(t *testing.T) {
	var seen domain.HistoryFilter

	svc := fakeAnalyzer{historyFn: func(filter domain.HistoryFilter) ([]domain.HistoryEntry, error) {
		seen = filter
		return []domain.HistoryEntry{{ID: "1"}, {ID: "2"}}, nil
	}}
	h := newTestHandler(svc)

	rec := serve(t, h, httptest.NewRequest(http.MethodGet, "/api/history?limit=10&since=2024-01-02&until=2024-02-01T00:00:00Z", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body historyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, 10, seen.Limit)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), seen.Since)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), seen.Until.UTC())

	rec = serve(t, h, httptest.NewRequest(http.MethodGet, "/api/history?since=yesterday-ish", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, h, httptest.NewRequest(http.MethodGet, "/api/history?limit=-1", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistoryEntry(t *testing.T) {
	const knownID = "6f1c2a34-5b6d-4e7f-8a9b-0c1d2e3f4a5b"

	svc := fakeAnalyzer{entryFn: func(id string) (*domain.HistoryEntry, error) {
		switch id {
		case knownID:
			return &domain.HistoryEntry{ID: knownID, Sentiment: domain.LabelPositive}, nil
		case "not-a-uuid":
			return nil, fmt.Errorf("get history: %w: history id %q", apperrors.ErrInvalidInput, id)
		default:
			return nil, fmt.Errorf("get history: %w: %s", apperrors.ErrHistoryNotFound, id)
		}
	}}
	h := newTestHandler(svc)

	tests := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{name: "found", method: http.MethodGet, path: "/api/history/" + knownID, status: http.StatusOK},
		{name: "missing", method: http.MethodGet, path: "/api/history/00000000-0000-0000-0000-000000000000", status: http.StatusNotFound},
		{name: "malformed id", method: http.MethodGet, path: "/api/history/not-a-uuid", status: http.StatusBadRequest},
		{name: "nested path", method: http.MethodGet, path: "/api/history/" + knownID + "/extra", status: http.StatusNotFound},
		{name: "wrong method", method: http.MethodDelete, path: "/api/history/" + knownID, status: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, h, httptest.NewRequest(tt.method, tt.path, nil))
			require.Equal(t, tt.status, rec.Code)

			if tt.status == http.StatusOK {
				var entry domain.HistoryEntry
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
				assert.Equal(t, knownID, entry.ID)
			}
		})
	}
}

func TestSimilar(t *testing.T) {
	svc := fakeAnalyzer{similarFn: func(text string, limit int) ([]domain.SimilarEntry, error) {
		if text == "" {
			return nil, apperrors.ErrInvalidInput
		}

		assert.Equal(t, maxSimilarLimit, limit)

		return []domain.SimilarEntry{{Similarity: 0.8}}, nil
	}}
	h := newTestHandler(svc)

	rec := serve(t, h, httptest.NewRequest(http.MethodGet, "/api/history/similar?text=great&limit=500", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)

	rec = serve(t, h, httptest.NewRequest(http.MethodGet, "/api/history/similar", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStats(t *testing.T) {
	svc := fakeAnalyzer{statsFn: func() (*domain.Stats, error) {
		return &domain.Stats{
			TotalAnalyses:         3,
			SentimentDistribution: domain.SentimentCounts{Positive: 2, Negative: 1},
			ByType:                map[domain.AnalysisType]int{domain.AnalysisSingle: 3},
		}, nil
	}}

	rec := serve(t, newTestHandler(svc), httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_analyses":3`)
	assert.Contains(t, rec.Body.String(), `"by_type":{"single":3}`)
}

func TestNotFound(t *testing.T) {
	rec := serve(t, newTestHandler(fakeAnalyzer{}), httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, errMsgNotFound, decodeDetail(t, rec))
}

func TestCORS(t *testing.T) {
	h := newTestHandler(fakeAnalyzer{})

	req := httptest.NewRequest(http.MethodOptions, "/api/analyze/text", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := serve(t, h, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, corsAllowMethods, rec.Header().Get("Access-Control-Allow-Methods"))

	req = httptest.NewRequest(http.MethodGet, "/api/", nil)
	req.Header.Set("Origin", "http://evil.example")

	rec = serve(t, h, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(apperrors.ErrEmptyCSV))
	assert.Equal(t, http.StatusNotFound, statusFor(fmt.Errorf("get history: %w", apperrors.ErrHistoryNotFound)))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(fmt.Errorf("x: %w", apperrors.ErrClientDisabled)))
	assert.Equal(t, http.StatusGatewayTimeout, statusFor(context.DeadlineExceeded))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("x")))
}
