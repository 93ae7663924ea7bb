package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
	assert.Same(t, registry, InitRegistry())
}

func TestRecordPrediction(t *testing.T) {
	InitRegistry()
	before := testutil.ToFloat64(PredictionsTotal.WithLabelValues("OVER"))

	RecordPrediction("OVER", 15*time.Millisecond)
	RecordConfidence(72.4)

	assert.Equal(t, before+1, testutil.ToFloat64(PredictionsTotal.WithLabelValues("OVER")))
}

func TestRecordPredictionError(t *testing.T) {
	InitRegistry()
	before := testutil.ToFloat64(PredictionErrorsTotal.WithLabelValues("data_unavailable"))

	RecordPredictionError("data_unavailable")

	assert.Equal(t, before+1, testutil.ToFloat64(PredictionErrorsTotal.WithLabelValues("data_unavailable")))
}

func TestRecordCacheLookup(t *testing.T) {
	InitRegistry()
	hits := testutil.ToFloat64(ResponseCacheTotal.WithLabelValues("hit"))
	misses := testutil.ToFloat64(ResponseCacheTotal.WithLabelValues("miss"))

	RecordCacheLookup(true)
	RecordCacheLookup(false)
	RecordCacheLookup(false)

	assert.Equal(t, hits+1, testutil.ToFloat64(ResponseCacheTotal.WithLabelValues("hit")))
	assert.Equal(t, misses+2, testutil.ToFloat64(ResponseCacheTotal.WithLabelValues("miss")))
}

func TestUpdateSnapshot(t *testing.T) {
	InitRegistry()
	built := time.Date(2025, 1, 15, 6, 0, 0, 0, time.UTC)

	UpdateSnapshot(7, built)

	assert.Equal(t, 7.0, testutil.ToFloat64(SnapshotVersion))
	assert.Equal(t, float64(built.Unix()), testutil.ToFloat64(SnapshotBuiltAt))
}

func TestHandler(t *testing.T) {
	InitRegistry()
	RecordDegraded()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sharpeye_degraded_predictions_total")
}
