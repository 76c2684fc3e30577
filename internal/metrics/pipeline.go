package metrics

import "github.com/prometheus/client_golang/prometheus"

// Pipeline Prometheus metrics.
var (
	InferenceRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "giftwise",
			Name:      "inference_requests_total",
			Help:      "Total number of inference requests",
		},
		[]string{"model", "purpose", "status"},
	)

	InferenceRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "giftwise",
			Name:      "inference_request_duration_seconds",
			Help:      "Inference request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"model"},
	)

	InferenceTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "giftwise",
			Name:      "inference_tokens_total",
			Help:      "Total inference tokens consumed",
		},
		[]string{"model", "type"},
	)

	CatalogSearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "giftwise",
			Name:      "catalog_searches_total",
			Help:      "Total catalog keyword searches",
		},
		[]string{"status"},
	)

	CatalogCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "giftwise",
			Name:      "catalog_cache_total",
			Help:      "Catalog search cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	TurnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "giftwise",
			Name:      "pipeline_turns_total",
			Help:      "Processed conversation turns by outcome",
		},
		[]string{"outcome"}, // "recommend" / "clarify" / "compare" / "error"
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers pipeline metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(InferenceRequestsTotal)
	prometheus.MustRegister(InferenceRequestDuration)
	prometheus.MustRegister(InferenceTokensTotal)
	prometheus.MustRegister(CatalogSearchesTotal)
	prometheus.MustRegister(CatalogCacheTotal)
	prometheus.MustRegister(TurnsTotal)
	pipelineMetricsRegistered = true
}
