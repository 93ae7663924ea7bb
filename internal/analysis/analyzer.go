package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/yourusername/sharpeye/internal/models"
	"github.com/yourusername/sharpeye/internal/oddsmath"
)

// NeutralBaseline is the implied probability used when the over side is not quoted
const NeutralBaseline = 0.5

// Analyzer turns a sample set into probabilities, edge and confidence
type Analyzer struct {
	confidence ConfidenceWeights
}

// NewAnalyzer creates an analyzer with the given confidence weights
func NewAnalyzer(weights ConfidenceWeights) *Analyzer {
	return &Analyzer{confidence: weights}
}

// Analyze derives a MonteCarloAnalysis from samples against a market line.
// Recommendation is left for the policy to fill.
func (a *Analyzer) Analyze(samples []float64, line models.MarketLine, predicted, mae float64) (*models.MonteCarloAnalysis, error) {
	n := len(samples)
	if n == 0 {
		return nil, &models.PreconditionError{Parameter: "sample_count", Value: 0}
	}

	sorted := make([]float64, n)
	copy(sorted, samples)
	sort.Float64s(sorted)

	over := ProbabilityOver(sorted, line.PropLine)

	implied, err := ImpliedOver(line)
	if err != nil {
		return nil, err
	}

	pct := Percentiles(sorted, models.PercentileRanks)

	return &models.MonteCarloAnalysis{
		ProbabilityOver:  over,
		ProbabilityUnder: 1 - over,
		Edge:             (over - implied) * 100,
		ConfidenceScore:  a.confidence.Score(pct[90]-pct[10], predicted, mae, n),
		Percentiles:      pct,
		Recommendation:   models.RecommendationPass,
	}, nil
}

// ProbabilityOver is the fraction of samples strictly above line. Samples at
// the line count as under.
func ProbabilityOver(samples []float64, line float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	count := 0
	for _, v := range samples {
		if v > line {
			count++
		}
	}
	return float64(count) / float64(len(samples))
}

// ImpliedOver returns the over side's implied probability or the neutral
// baseline when the over side is not quoted.
func ImpliedOver(line models.MarketLine) (float64, error) {
	if !line.HasOverOdds() {
		return NeutralBaseline, nil
	}
	p, err := oddsmath.ImpliedProbability(*line.OverOdds)
	if err != nil {
		return 0, fmt.Errorf("%w: over_odds: %v", models.ErrValidation, err)
	}
	return p, nil
}

// Percentiles picks nearest-rank values from an ascending slice
func Percentiles(sorted []float64, ranks []int) map[int]float64 {
	out := make(map[int]float64, len(ranks))
	n := len(sorted)
	if n == 0 {
		return out
	}
	for _, p := range ranks {
		idx := int(math.Ceil(float64(p)/100*float64(n))) - 1
		if idx < 0 {
			idx = 0
		}
		if idx >= n {
			idx = n - 1
		}
		out[p] = sorted[idx]
	}
	return out
}

// PercentileOf returns the share of samples at or below v, as a percentage
func PercentileOf(samples []float64, v float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	count := 0
	for _, s := range samples {
		if s <= v {
			count++
		}
	}
	return float64(count) / float64(len(samples)) * 100
}
