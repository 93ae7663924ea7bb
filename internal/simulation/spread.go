package simulation

import "math"

// maeToSigma converts a mean absolute error into the standard deviation of a
// normal distribution with that MAE.
var maeToSigma = math.Sqrt(math.Pi / 2)

// SpreadPolicy blends model error and recent-form variability into the
// standard deviation used for sampling.
type SpreadPolicy struct {
	ModelWeight float64
	FormWeight  float64
	MinSpread   float64
}

// DefaultSpreadPolicy weights model error and form equally
func DefaultSpreadPolicy() SpreadPolicy {
	return SpreadPolicy{
		ModelWeight: 0.5,
		FormWeight:  0.5,
		MinSpread:   0.5,
	}
}

// Blend returns sqrt(wm*(mae*sqrt(pi/2))^2 + wf*std^2), floored at MinSpread.
// Negative inputs count as zero so the result is non-decreasing in both.
// Non-finite inputs propagate so callers can detect them.
func (p SpreadPolicy) Blend(mae, std float64) float64 {
	if math.IsNaN(mae) || math.IsNaN(std) || math.IsInf(mae, 0) || math.IsInf(std, 0) {
		return math.NaN()
	}
	mae = math.Max(mae, 0)
	std = math.Max(std, 0)

	modelSigma := mae * maeToSigma
	sigma := math.Sqrt(p.ModelWeight*modelSigma*modelSigma + p.FormWeight*std*std)
	if sigma < p.MinSpread {
		return p.MinSpread
	}
	return sigma
}

// Valid reports whether the weights and floor describe a usable policy
func (p SpreadPolicy) Valid() bool {
	return p.ModelWeight >= 0 && p.FormWeight >= 0 &&
		p.ModelWeight+p.FormWeight > 0 && p.MinSpread > 0
}
