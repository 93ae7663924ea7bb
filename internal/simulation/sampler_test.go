package simulation

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/sharpeye/internal/models"
)

func seedPtr(v int64) *int64 { return &v }

func TestSimulateDeterministic(t *testing.T) {
	s := NewSampler(DefaultSpreadPolicy(), 4, 500)
	est := models.PointEstimate{PredictedPoints: 28.4, ModelMAE: 4.5}

	a, err := s.Simulate(est, 5.0, DefaultSampleCount, seedPtr(42))
	require.NoError(t, err)
	b, err := s.Simulate(est, 5.0, DefaultSampleCount, seedPtr(42))
	require.NoError(t, err)

	assert.Equal(t, a.Values, b.Values)
	assert.Equal(t, int64(42), a.Seed)
	assert.Len(t, a.Values, DefaultSampleCount)
}

func TestSimulateIndependentOfWorkerCount(t *testing.T) {
	est := models.PointEstimate{PredictedPoints: 20, ModelMAE: 3}

	one, err := NewSampler(DefaultSpreadPolicy(), 1, 250).Simulate(est, 4, 3000, seedPtr(7))
	require.NoError(t, err)
	many, err := NewSampler(DefaultSpreadPolicy(), 16, 250).Simulate(est, 4, 3000, seedPtr(7))
	require.NoError(t, err)

	assert.Equal(t, one.Values, many.Values)
}

func TestSimulateDifferentSeeds(t *testing.T) {
	s := NewSampler(DefaultSpreadPolicy(), 2, 0)
	est := models.PointEstimate{PredictedPoints: 20, ModelMAE: 3}

	a, err := s.Simulate(est, 4, 100, seedPtr(1))
	require.NoError(t, err)
	b, err := s.Simulate(est, 4, 100, seedPtr(2))
	require.NoError(t, err)
	assert.NotEqual(t, a.Values, b.Values)

	c, err := s.Simulate(est, 4, 100, nil)
	require.NoError(t, err)
	assert.Len(t, c.Values, 100)
}

func TestSimulateClampsNegatives(t *testing.T) {
	s := NewSampler(DefaultSpreadPolicy(), 0, 0)
	// centred near zero with a wide spread so roughly half the raw draws are negative
	est := models.PointEstimate{PredictedPoints: 1, ModelMAE: 8}

	set, err := s.Simulate(est, 10, 5000, seedPtr(99))
	require.NoError(t, err)

	zeros := 0
	for _, v := range set.Values {
		require.GreaterOrEqual(t, v, 0.0)
		if v == 0 {
			zeros++
		}
	}
	assert.Greater(t, zeros, 1000)
	assert.Greater(t, set.Mean, 1.0)
}

func TestSimulateCentredOnPrediction(t *testing.T) {
	s := NewSampler(DefaultSpreadPolicy(), 0, 0)
	est := models.PointEstimate{PredictedPoints: 30, ModelMAE: 2}

	set, err := s.Simulate(est, 2, 20000, seedPtr(5))
	require.NoError(t, err)
	assert.InDelta(t, 30, set.Mean, 0.2)
}

func TestSimulatePreconditions(t *testing.T) {
	s := NewSampler(DefaultSpreadPolicy(), 0, 0)
	valid := models.PointEstimate{PredictedPoints: 20, ModelMAE: 3}

	tests := []struct {
		name  string
		est   models.PointEstimate
		std   float64
		count int
		param string
	}{
		{"zero samples", valid, 4, 0, "sample_count"},
		{"negative samples", valid, 4, -10, "sample_count"},
		{"nan prediction", models.PointEstimate{PredictedPoints: math.NaN(), ModelMAE: 3}, 4, 100, "predicted_points"},
		{"infinite std", valid, math.Inf(1), 100, "spread"},
		{"nan mae", models.PointEstimate{PredictedPoints: 20, ModelMAE: math.NaN()}, 4, 100, "spread"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Simulate(tt.est, tt.std, tt.count, seedPtr(1))
			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrSimulationPrecondition))

			var pe *models.PreconditionError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.param, pe.Parameter)
		})
	}
}
