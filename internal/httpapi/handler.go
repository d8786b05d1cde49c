// Package httpapi serves the JSON analysis API under /api.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/rs/zerolog"

	"github.com/lueurxax/sentiment-scope/internal/analysis"
	"github.com/lueurxax/sentiment-scope/internal/core/domain"
	apperrors "github.com/lueurxax/sentiment-scope/internal/core/errors"
)

const (
	// Prefix is the mount point of the API.
	Prefix = "/api"

	apiVersion = "1.0.0"

	maxBodyBytes          = 1 << 20
	defaultMaxUploadBytes = 10 << 20
	multipartMemory       = 1 << 20
	defaultSimilarLimit   = 5
	maxSimilarLimit       = 50

	// Route path constants.
	routeAnalyzeText = "analyze/text"
	routeAnalyzeBulk = "analyze/bulk"
	routeAnalyzeCSV  = "analyze/csv"
	routeAnalyzeURL  = "analyze/url"
	routeHistory     = "history"
	routeSimilar     = "history/similar"
	routeStats       = "stats"

	// Content type constants.
	contentTypeHeader = "Content-Type"
	contentTypeJSON   = "application/json; charset=utf-8"

	// Error message constants.
	errMsgInternal    = "Internal server error"
	errMsgNotFound    = "Not Found"
	errMsgMethod      = "Method Not Allowed"
	errMsgInvalidJSON = "Invalid JSON body"
	errMsgFileMissing = "Multipart field 'file' is required"

	// Log field names.
	logFieldRoute  = "route"
	logFieldStatus = "status"

	csvFormField = "file"
)

// Static errors for query validation.
var (
	errInvalidTime  = errors.New("invalid time")
	errInvalidLimit = errors.New("invalid limit")
)

// Analyzer is the analysis service.
type Analyzer interface {
	AnalyzeText(ctx context.Context, text string) (*analysis.TextResult, error)
	AnalyzeBulk(ctx context.Context, texts []string) (*analysis.BatchResult, error)
	AnalyzeCSV(ctx context.Context, r io.Reader) (*analysis.BatchResult, error)
	AnalyzeURL(ctx context.Context, rawURL string) (*analysis.URLResult, error)
	History(ctx context.Context, filter domain.HistoryFilter) ([]domain.HistoryEntry, error)
	HistoryEntry(ctx context.Context, id string) (*domain.HistoryEntry, error)
	SimilarHistory(ctx context.Context, text string, limit int) ([]domain.SimilarEntry, error)
	Stats(ctx context.Context) (*domain.Stats, error)
}

// Options configures the handler.
type Options struct {
	CORSOrigins    []string
	MaxUploadBytes int64
}

// Handler serves the analysis API.
type Handler struct {
	svc    Analyzer
	opts   Options
	logger *zerolog.Logger
}

type textRequest struct {
	Text string `json:"text"`
}

type bulkRequest struct {
	Texts []string `json:"texts"`
}

type urlRequest struct {
	URL string `json:"url"`
}

type historyResponse struct {
	History []domain.HistoryEntry `json:"history"`
	Count   int                   `json:"count"`
}

type similarResponse struct {
	Similar []domain.SimilarEntry `json:"similar"`
	Count   int                   `json:"count"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// NewHandler creates the API handler.
func NewHandler(svc Analyzer, opts Options, logger *zerolog.Logger) *Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}

	return &Handler{svc: svc, opts: opts, logger: logger}
}

// ServeHTTP routes requests under Prefix.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if h.applyCORS(w, r) {
		return
	}

	route, status, resultSize := h.dispatch(w, r)

	h.recordMetrics(route, status, resultSize, start)
}

func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request) (route string, status int, resultSize int) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, Prefix), "/")

	switch path {
	case "":
		return "index", h.handleIndex(w, r), 0
	case routeAnalyzeText:
		return "analyze_text", h.handleAnalyzeText(w, r), 1
	case routeAnalyzeBulk:
		s, rs := h.handleAnalyzeBulk(w, r)
		return "analyze_bulk", s, rs
	case routeAnalyzeCSV:
		s, rs := h.handleAnalyzeCSV(w, r)
		return "analyze_csv", s, rs
	case routeAnalyzeURL:
		s, rs := h.handleAnalyzeURL(w, r)
		return "analyze_url", s, rs
	case routeHistory:
		s, rs := h.handleHistory(w, r)
		return "history", s, rs
	case routeSimilar:
		s, rs := h.handleSimilar(w, r)
		return "history_similar", s, rs
	case routeStats:
		return "stats", h.handleStats(w, r), 0
	}

	if id, ok := strings.CutPrefix(path, routeHistory+"/"); ok && id != "" && !strings.Contains(id, "/") {
		return "history_entry", h.handleHistoryEntry(w, r, id), 1
	}

	return "not_found", h.writeDetail(w, http.StatusNotFound, errMsgNotFound), 0
}

func (h *Handler) recordMetrics(route string, status, resultSize int, start time.Time) {
	latencyHistogram.WithLabelValues(route).Observe(time.Since(start).Seconds())
	requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()

	if resultSize > 0 {
		resultSizeGauge.WithLabelValues(route).Set(float64(resultSize))
	}
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) int {
	if r.Method != http.MethodGet {
		return h.writeDetail(w, http.StatusMethodNotAllowed, errMsgMethod)
	}

	return h.writeJSON(w, http.StatusOK, map[string]any{
		"message": "SentimentScope API",
		"version": apiVersion,
		"endpoints": map[string]string{
			"analyze_text":    Prefix + "/" + routeAnalyzeText,
			"analyze_bulk":    Prefix + "/" + routeAnalyzeBulk,
			"analyze_csv":     Prefix + "/" + routeAnalyzeCSV,
			"analyze_url":     Prefix + "/" + routeAnalyzeURL,
			"get_history":     Prefix + "/" + routeHistory,
			"history_entry":   Prefix + "/" + routeHistory + "/{id}",
			"similar_history": Prefix + "/" + routeSimilar,
			"get_stats":       Prefix + "/" + routeStats,
		},
	})
}

func (h *Handler) handleAnalyzeText(w http.ResponseWriter, r *http.Request) int {
	var req textRequest
	if status, ok := h.decodeJSON(w, r, &req); !ok {
		return status
	}

	res, err := h.svc.AnalyzeText(r.Context(), req.Text)
	if err != nil {
		return h.writeServiceError(w, routeAnalyzeText, err)
	}

	return h.writeJSON(w, http.StatusOK, res)
}

func (h *Handler) handleAnalyzeBulk(w http.ResponseWriter, r *http.Request) (int, int) {
	var req bulkRequest
	if status, ok := h.decodeJSON(w, r, &req); !ok {
		return status, 0
	}

	res, err := h.svc.AnalyzeBulk(r.Context(), req.Texts)
	if err != nil {
		return h.writeServiceError(w, routeAnalyzeBulk, err), 0
	}

	return h.writeJSON(w, http.StatusOK, res), len(res.Results)
}

func (h *Handler) handleAnalyzeCSV(w http.ResponseWriter, r *http.Request) (int, int) {
	if r.Method != http.MethodPost {
		return h.writeDetail(w, http.StatusMethodNotAllowed, errMsgMethod), 0
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return h.writeDetail(w, http.StatusBadRequest, fmt.Sprintf("Invalid upload: %v", err)), 0
	}

	file, _, err := r.FormFile(csvFormField)
	if err != nil {
		return h.writeDetail(w, http.StatusBadRequest, errMsgFileMissing), 0
	}
	defer file.Close()

	res, err := h.svc.AnalyzeCSV(r.Context(), file)
	if err != nil {
		return h.writeServiceError(w, routeAnalyzeCSV, err), 0
	}

	return h.writeJSON(w, http.StatusOK, res), len(res.Results)
}

func (h *Handler) handleAnalyzeURL(w http.ResponseWriter, r *http.Request) (int, int) {
	var req urlRequest
	if status, ok := h.decodeJSON(w, r, &req); !ok {
		return status, 0
	}

	res, err := h.svc.AnalyzeURL(r.Context(), req.URL)
	if err != nil {
		return h.writeServiceError(w, routeAnalyzeURL, err), 0
	}

	return h.writeJSON(w, http.StatusOK, res), len(res.Results)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) (int, int) {
	if r.Method != http.MethodGet {
		return h.writeDetail(w, http.StatusMethodNotAllowed, errMsgMethod), 0
	}

	filter, err := parseHistoryFilter(r)
	if err != nil {
		return h.writeDetail(w, http.StatusBadRequest, err.Error()), 0
	}

	entries, err := h.svc.History(r.Context(), filter)
	if err != nil {
		return h.writeServiceError(w, routeHistory, err), 0
	}

	return h.writeJSON(w, http.StatusOK, historyResponse{History: entries, Count: len(entries)}), len(entries)
}

func (h *Handler) handleHistoryEntry(w http.ResponseWriter, r *http.Request, id string) int {
	if r.Method != http.MethodGet {
		return h.writeDetail(w, http.StatusMethodNotAllowed, errMsgMethod)
	}

	entry, err := h.svc.HistoryEntry(r.Context(), id)
	if err != nil {
		return h.writeServiceError(w, routeHistory, err)
	}

	return h.writeJSON(w, http.StatusOK, entry)
}

func (h *Handler) handleSimilar(w http.ResponseWriter, r *http.Request) (int, int) {
	if r.Method != http.MethodGet {
		return h.writeDetail(w, http.StatusMethodNotAllowed, errMsgMethod), 0
	}

	limit, err := parseLimit(r.URL.Query().Get("limit"), defaultSimilarLimit, maxSimilarLimit)
	if err != nil {
		return h.writeDetail(w, http.StatusBadRequest, err.Error()), 0
	}

	entries, err := h.svc.SimilarHistory(r.Context(), r.URL.Query().Get("text"), limit)
	if err != nil {
		return h.writeServiceError(w, routeSimilar, err), 0
	}

	return h.writeJSON(w, http.StatusOK, similarResponse{Similar: entries, Count: len(entries)}), len(entries)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) int {
	if r.Method != http.MethodGet {
		return h.writeDetail(w, http.StatusMethodNotAllowed, errMsgMethod)
	}

	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		return h.writeServiceError(w, routeStats, err)
	}

	return h.writeJSON(w, http.StatusOK, stats)
}

// decodeJSON reads a POST body into dst. ok is false when a response was already written.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) (int, bool) {
	if r.Method != http.MethodPost {
		return h.writeDetail(w, http.StatusMethodNotAllowed, errMsgMethod), false
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return h.writeDetail(w, http.StatusBadRequest, errMsgInvalidJSON), false
	}

	return 0, true
}

func parseHistoryFilter(r *http.Request) (domain.HistoryFilter, error) {
	q := r.URL.Query()

	limit, err := parseLimit(q.Get("limit"), 0, 0)
	if err != nil {
		return domain.HistoryFilter{}, err
	}

	filter := domain.HistoryFilter{Limit: limit}

	if filter.Since, err = parseTime(q.Get("since")); err != nil {
		return domain.HistoryFilter{}, err
	}

	if filter.Until, err = parseTime(q.Get("until")); err != nil {
		return domain.HistoryFilter{}, err
	}

	return filter, nil
}

// parseTime accepts RFC 3339, plain dates and the other layouts dateparse knows.
// An empty value is the zero time.
func parseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}

	t, err := dateparse.ParseIn(value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q", errInvalidTime, value)
	}

	return t, nil
}

// parseLimit returns fallback for an empty value and clamps to limitMax when it is positive.
func parseLimit(value string, fallback, limitMax int) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w %q", errInvalidLimit, value)
	}

	if limitMax > 0 && n > limitMax {
		return limitMax, nil
	}

	return n, nil
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput),
		errors.Is(err, apperrors.ErrTooManyTexts),
		errors.Is(err, apperrors.ErrMissingTextColumn),
		errors.Is(err, apperrors.ErrEmptyCSV),
		errors.Is(err, apperrors.ErrInvalidURL):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrHistoryNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrCommentsUnavailable),
		errors.Is(err, apperrors.ErrClientDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeServiceError(w http.ResponseWriter, route string, err error) int {
	status := statusFor(err)

	if status >= http.StatusInternalServerError {
		h.logger.Error().Err(err).Str(logFieldRoute, route).Int(logFieldStatus, status).Msg("request failed")
	}

	if status == http.StatusInternalServerError {
		return h.writeDetail(w, status, errMsgInternal)
	}

	return h.writeDetail(w, status, err.Error())
}

func (h *Handler) writeDetail(w http.ResponseWriter, status int, detail string) int {
	return h.writeJSON(w, status, errorResponse{Detail: detail})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) int {
	w.Header().Set(contentTypeHeader, contentTypeJSON)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error().Err(err).Msg("write json failed")
	}

	return status
}
