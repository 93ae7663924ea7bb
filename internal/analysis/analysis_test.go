package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/sharpeye/internal/models"
	"github.com/yourusername/sharpeye/internal/simulation"
)

func intPtr(v int) *int      { return &v }
func seedPtr(v int64) *int64 { return &v }

func simulate(t *testing.T, predicted, mae, std float64, seed int64) []float64 {
	t.Helper()
	s := simulation.NewSampler(simulation.DefaultSpreadPolicy(), 0, 0)
	set, err := s.Simulate(models.PointEstimate{PredictedPoints: predicted, ModelMAE: mae}, std, simulation.DefaultSampleCount, seedPtr(seed))
	require.NoError(t, err)
	return set.Values
}

func TestAnalyzeScenarioStrongOver(t *testing.T) {
	samples := simulate(t, 28.4, 4.5, 5.0, 11)
	a := NewAnalyzer(DefaultConfidenceWeights())

	mc, err := a.Analyze(samples, models.MarketLine{PropLine: 26.5, OverOdds: intPtr(-110), UnderOdds: intPtr(-110)}, 28.4, 4.5)
	require.NoError(t, err)

	assert.Greater(t, mc.ProbabilityOver, 0.58)
	assert.Greater(t, mc.Edge, 3.0)
	assert.Greater(t, mc.ConfidenceScore, 55.0)
	assert.Equal(t, 1.0, mc.ProbabilityOver+mc.ProbabilityUnder)
}

func TestAnalyzeTieGoesUnder(t *testing.T) {
	samples := []float64{20, 24, 24, 24, 30}
	a := NewAnalyzer(DefaultConfidenceWeights())

	mc, err := a.Analyze(samples, models.MarketLine{PropLine: 24}, 24, 3)
	require.NoError(t, err)

	assert.InDelta(t, 0.2, mc.ProbabilityOver, 1e-12)
	assert.InDelta(t, 0.8, mc.ProbabilityUnder, 1e-12)
	assert.Equal(t, 1.0, mc.ProbabilityOver+mc.ProbabilityUnder)
}

func TestAnalyzeAtLineSimulation(t *testing.T) {
	samples := simulate(t, 24.0, 4.0, 5.0, 3)
	a := NewAnalyzer(DefaultConfidenceWeights())

	mc, err := a.Analyze(samples, models.MarketLine{PropLine: 24.0, OverOdds: intPtr(-110), UnderOdds: intPtr(-110)}, 24, 4)
	require.NoError(t, err)

	assert.Equal(t, 1.0, mc.ProbabilityOver+mc.ProbabilityUnder)
	assert.InDelta(t, 0.5, mc.ProbabilityOver, 0.03)
}

func TestAnalyzeNoOddsUsesNeutralBaseline(t *testing.T) {
	samples := []float64{10, 20, 30, 40}
	a := NewAnalyzer(DefaultConfidenceWeights())

	mc, err := a.Analyze(samples, models.MarketLine{PropLine: 15}, 25, 3)
	require.NoError(t, err)

	assert.InDelta(t, 0.75, mc.ProbabilityOver, 1e-12)
	assert.InDelta(t, 25.0, mc.Edge, 1e-9)
}

func TestAnalyzeUnderOddsOnlyStillUsesBaseline(t *testing.T) {
	samples := []float64{10, 20, 30, 40}
	a := NewAnalyzer(DefaultConfidenceWeights())

	mc, err := a.Analyze(samples, models.MarketLine{PropLine: 15, UnderOdds: intPtr(-200)}, 25, 3)
	require.NoError(t, err)
	assert.InDelta(t, 25.0, mc.Edge, 1e-9)
}

func TestAnalyzeEdgeAgainstImplied(t *testing.T) {
	samples := []float64{10, 20, 30, 40}
	a := NewAnalyzer(DefaultConfidenceWeights())

	mc, err := a.Analyze(samples, models.MarketLine{PropLine: 15, OverOdds: intPtr(-300)}, 25, 3)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, mc.Edge, 1e-9)
}

func TestAnalyzeRejectsBadOdds(t *testing.T) {
	a := NewAnalyzer(DefaultConfidenceWeights())
	_, err := a.Analyze([]float64{1, 2}, models.MarketLine{PropLine: 1, OverOdds: intPtr(50)}, 2, 1)
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestAnalyzeEmptySamples(t *testing.T) {
	a := NewAnalyzer(DefaultConfidenceWeights())
	_, err := a.Analyze(nil, models.MarketLine{PropLine: 1}, 2, 1)
	assert.True(t, errors.Is(err, models.ErrSimulationPrecondition))
}

func TestAnalyzeDoesNotReorderInput(t *testing.T) {
	samples := []float64{3, 1, 2}
	a := NewAnalyzer(DefaultConfidenceWeights())
	_, err := a.Analyze(samples, models.MarketLine{PropLine: 1}, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1, 2}, samples)
}

func TestPercentilesNearestRank(t *testing.T) {
	sorted := make([]float64, 100)
	for i := range sorted {
		sorted[i] = float64(i + 1)
	}
	p := Percentiles(sorted, models.PercentileRanks)

	assert.Equal(t, 5.0, p[5])
	assert.Equal(t, 50.0, p[50])
	assert.Equal(t, 95.0, p[95])

	single := Percentiles([]float64{7}, models.PercentileRanks)
	for _, r := range models.PercentileRanks {
		assert.Equal(t, 7.0, single[r])
	}
}

func TestPercentilesMonotone(t *testing.T) {
	samples := simulate(t, 18, 5, 7, 21)
	a := NewAnalyzer(DefaultConfidenceWeights())
	mc, err := a.Analyze(samples, models.MarketLine{PropLine: 17.5}, 18, 5)
	require.NoError(t, err)

	for i := 1; i < len(models.PercentileRanks); i++ {
		lo := mc.Percentiles[models.PercentileRanks[i-1]]
		hi := mc.Percentiles[models.PercentileRanks[i]]
		assert.LessOrEqual(t, lo, hi)
	}
}

func TestConfidenceBoundsAndMonotonicity(t *testing.T) {
	w := DefaultConfidenceWeights()

	prev := math.Inf(1)
	for spread := 0.0; spread <= 100; spread += 2.5 {
		got := w.Score(spread, 25, 4, 10000)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 100.0)
		assert.LessOrEqual(t, got, prev)
		prev = got
	}

	assert.Greater(t, w.Score(10, 25, 4, 10000), w.Score(10, 25, 4, 100))
	assert.Greater(t, w.Score(10, 25, 2, 10000), w.Score(10, 25, 8, 10000))
	assert.Equal(t, 0.0, w.Score(10, 25, 4, 0))
	assert.LessOrEqual(t, w.Score(0, 0, 0, 1<<30), 100.0)
}

func TestBuildIntervalOrdering(t *testing.T) {
	tests := []models.PointEstimate{
		{PredictedPoints: 28.4, ModelMAE: 4.5},
		{PredictedPoints: 2.0, ModelMAE: 6.0},
		{PredictedPoints: 0, ModelMAE: 3},
		{PredictedPoints: 17.25, ModelMAE: 0},
		{PredictedPoints: -1, ModelMAE: 2},
	}

	for _, est := range tests {
		iv := BuildInterval(est)
		predicted := Round(math.Max(est.PredictedPoints, 0), 1)
		assert.True(t, iv.Contains(predicted), "%+v -> %+v", est, iv)
		assert.GreaterOrEqual(t, iv.Lower90, 0.0)
	}
}

func TestBuildIntervalWidth(t *testing.T) {
	iv := BuildInterval(models.PointEstimate{PredictedPoints: 20, ModelMAE: 4})
	assert.InDelta(t, 2.0615, Z90, 1e-3)
	assert.InDelta(t, 20-Z90*4, iv.Lower90, 0.05)
	assert.InDelta(t, 20+Z90*4, iv.Upper90, 0.05)
	assert.Equal(t, 4.0, iv.ModelMAE)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 28.4, Round(28.44, 1))
	assert.Equal(t, 28.5, Round(28.45, 1))
	assert.Equal(t, 0.6391, Round(0.63912, 4))
}

func TestHistogram(t *testing.T) {
	samples := simulate(t, 20, 4, 5, 8)
	bins := Histogram(samples, DefaultHistogramBins)
	require.Len(t, bins, DefaultHistogramBins)

	total := 0
	for i, b := range bins {
		total += b.Count
		assert.Less(t, b.Lower, b.Upper)
		if i > 0 {
			assert.InDelta(t, bins[i-1].Upper, b.Lower, 1e-9)
		}
	}
	assert.Equal(t, len(samples), total)

	flat := Histogram([]float64{5, 5, 5}, 4)
	assert.Equal(t, 3, flat[0].Count)
	assert.Nil(t, Histogram(nil, 10))
}

func TestPercentileOf(t *testing.T) {
	assert.Equal(t, 50.0, PercentileOf([]float64{1, 2, 3, 4}, 2))
	assert.Equal(t, 0.0, PercentileOf(nil, 2))
}
