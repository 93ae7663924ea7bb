package estimator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ModelPredictionsTotal tracks point estimates served per backend
	ModelPredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sharpeye",
			Name:      "model_predictions_total",
			Help:      "Total number of point estimates produced",
		},
		[]string{"backend", "cache_hit"},
	)

	// ModelLatency tracks point estimator latency
	ModelLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sharpeye",
			Name:      "model_latency_seconds",
			Help:      "Point estimator latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"backend"},
	)

	// ModelErrorsTotal tracks failed model calls
	ModelErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sharpeye",
			Name:      "model_errors_total",
			Help:      "Total number of failed point estimator calls",
		},
		[]string{"backend", "error_type"},
	)

	// ModelCacheHitRatio tracks the in-memory model cache hit ratio
	ModelCacheHitRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "sharpeye",
			Name:      "model_cache_hit_ratio",
			Help:      "Model output cache hit ratio",
		},
	)
)
