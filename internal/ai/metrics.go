package ai

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	aiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quest_forge_ai_requests_total",
			Help: "Total number of requests to the model API.",
		},
		[]string{"model", "kind", "status"},
	)
	aiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quest_forge_ai_request_duration_seconds",
			Help:    "Histogram of model API request durations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model", "kind"},
	)
	aiInputTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quest_forge_ai_input_tokens",
			Help:    "Histogram of input token counts.",
			Buckets: prometheus.LinearBuckets(250, 250, 20),
		},
		[]string{"model", "kind"},
	)
	aiOutputTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quest_forge_ai_output_tokens",
			Help:    "Histogram of output token counts.",
			Buckets: prometheus.LinearBuckets(100, 100, 20),
		},
		[]string{"model", "kind"},
	)
	aiEstimatedCostUSD = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quest_forge_ai_estimated_cost_usd_total",
			Help: "Estimated total cost of model API requests in USD.",
		},
		[]string{"model", "kind"},
	)
)
