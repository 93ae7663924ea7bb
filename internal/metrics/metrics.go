// Package metrics provides the Prometheus registry for the prediction service.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PredictionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sharpeye",
		Name:      "predictions_total",
		Help:      "Total number of completed predictions by recommendation",
	}, []string{"recommendation"})
	PredictionErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sharpeye",
		Name:      "prediction_errors_total",
		Help:      "Total number of failed predictions by error kind",
	}, []string{"kind"})
	DegradedPredictionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sharpeye",
		Name:      "degraded_predictions_total",
		Help:      "Total number of predictions returned without Monte Carlo detail",
	})
	ResponseCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sharpeye",
		Name:      "response_cache_total",
		Help:      "Response cache lookups by result",
	}, []string{"result"})
	SnapshotRefreshErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sharpeye",
		Name:      "snapshot_refresh_errors_total",
		Help:      "Total number of failed feature snapshot refreshes",
	})
)

// Gauge metrics
var (
	SnapshotVersion = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "sharpeye",
		Name:      "feature_snapshot_version",
		Help:      "Version of the live feature snapshot",
	})
	SnapshotBuiltAt = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "sharpeye",
		Name:      "feature_snapshot_built_timestamp_seconds",
		Help:      "Unix time the live feature snapshot was built",
	})
)

// Histogram metrics
var (
	PredictionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sharpeye",
		Name:      "prediction_duration_seconds",
		Help:      "End to end prediction latency in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	SimulationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sharpeye",
		Name:      "simulation_duration_seconds",
		Help:      "Monte Carlo sampling latency in seconds",
		Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
	})
	ConfidenceScore = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sharpeye",
		Name:      "confidence_score",
		Help:      "Distribution of confidence scores",
		Buckets:   prometheus.LinearBuckets(10, 10, 9),
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(PredictionsTotal)
		registry.MustRegister(PredictionErrorsTotal)
		registry.MustRegister(DegradedPredictionsTotal)
		registry.MustRegister(ResponseCacheTotal)
		registry.MustRegister(SnapshotRefreshErrorsTotal)

		registry.MustRegister(SnapshotVersion)
		registry.MustRegister(SnapshotBuiltAt)

		registry.MustRegister(PredictionDuration)
		registry.MustRegister(SimulationDuration)
		registry.MustRegister(ConfidenceScore)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler. Model client metrics and the
// Go runtime collectors live on the default registry, so both are gathered.
func Handler() http.Handler {
	gatherers := prometheus.Gatherers{GetRegistry(), prometheus.DefaultGatherer}
	return promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{})
}

// RecordPrediction records a completed prediction. Degraded predictions are
// labelled "NONE".
func RecordPrediction(recommendation string, duration time.Duration) {
	PredictionsTotal.WithLabelValues(recommendation).Inc()
	PredictionDuration.Observe(duration.Seconds())
}

// RecordConfidence records a Monte Carlo confidence score.
func RecordConfidence(score float64) {
	ConfidenceScore.Observe(score)
}

// RecordDegraded records a prediction returned without simulation detail.
func RecordDegraded() {
	DegradedPredictionsTotal.Inc()
}

// RecordPredictionError records a failed prediction by kind.
func RecordPredictionError(kind string) {
	PredictionErrorsTotal.WithLabelValues(kind).Inc()
}

// RecordSimulation records sampling latency.
func RecordSimulation(duration time.Duration) {
	SimulationDuration.Observe(duration.Seconds())
}

// RecordCacheLookup records a response cache hit or miss.
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	ResponseCacheTotal.WithLabelValues(result).Inc()
}

// UpdateSnapshot updates the live snapshot gauges.
func UpdateSnapshot(version uint64, builtAt time.Time) {
	SnapshotVersion.Set(float64(version))
	SnapshotBuiltAt.Set(float64(builtAt.Unix()))
}

// RecordSnapshotRefreshError records a failed refresh.
func RecordSnapshotRefreshError() {
	SnapshotRefreshErrorsTotal.Inc()
}
