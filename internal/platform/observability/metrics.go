package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ClassificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentiment_classifications_total",
		Help: "The total number of classifications by producing tier and label",
	}, []string{"model", "sentiment"})

	TierFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentiment_tier_failures_total",
		Help: "The total number of tier failures that cascaded to the next tier",
	}, []string{"tier"})

	TierDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sentiment_tier_duration_seconds",
		Help:    "Duration of a single tier invocation",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"tier"})

	TiersLoaded = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sentiment_tiers_loaded",
		Help: "Whether a classifier tier was loaded at startup (1) or not (0)",
	}, []string{"tier"})

	TranslationRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentiment_translation_requests_total",
		Help: "The total number of translation provider calls",
	}, []string{"provider", "status"})

	TranslationCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentiment_translation_cache_lookups_total",
		Help: "Translation cache lookups by result",
	}, []string{"result"})

	LLMRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sentiment_llm_request_duration_seconds",
		Help:    "Duration of LLM requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"model", "operation"})

	ContentFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentiment_content_fetches_total",
		Help: "URL content fetches by source kind and status",
	}, []string{"source", "status"})

	AnalysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentiment_analyses_total",
		Help: "The total number of analysis requests by type",
	}, []string{"type"})

	HistoryWriteErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sentiment_history_write_errors_total",
		Help: "Failed history inserts",
	})

	TranslationCachePurged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sentiment_translation_cache_purged_total",
		Help: "Expired translation cache rows removed",
	})

	PeriodicTaskRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentiment_periodic_task_runs_total",
		Help: "Background task runs by task and outcome",
	}, []string{"task", "status"})

	PeriodicTaskDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sentiment_periodic_task_duration_seconds",
		Help:    "Duration of background task runs",
		Buckets: prometheus.DefBuckets,
	}, []string{"task"})
)
