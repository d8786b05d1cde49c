package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentiment_api_requests_total",
		Help: "Total number of API requests",
	}, []string{"route", "status"})

	latencyHistogram = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sentiment_api_latency_seconds",
		Help:    "Latency of API requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	resultSizeGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sentiment_api_result_size",
		Help: "Number of results in the last API response per route",
	}, []string{"route"})
)
