package analysis

import "math"

// ConfidenceWeights parameterise the confidence score
type ConfidenceWeights struct {
	SpreadWeight   float64
	AccuracyWeight float64
	// SampleHalfLife is the sample count at which the sample factor reaches 0.5
	SampleHalfLife float64
}

// DefaultConfidenceWeights favour the sampled spread over model accuracy
func DefaultConfidenceWeights() ConfidenceWeights {
	return ConfidenceWeights{
		SpreadWeight:   0.7,
		AccuracyWeight: 0.3,
		SampleHalfLife: 100,
	}
}

// Score maps spread, accuracy and sample count to [0,100]. It never looks at
// the edge, so it is symmetric for over and under.
func (w ConfidenceWeights) Score(percentileRange, predicted, mae float64, n int) float64 {
	scale := math.Max(predicted, 1)
	spreadFactor := 1 / (1 + math.Max(percentileRange, 0)/scale)
	accuracyFactor := 1 / (1 + math.Max(mae, 0)/scale)
	sampleFactor := float64(n) / (float64(n) + math.Max(w.SampleHalfLife, 0))

	total := w.SpreadWeight + w.AccuracyWeight
	if total <= 0 {
		return 0
	}
	blended := (w.SpreadWeight*spreadFactor + w.AccuracyWeight*accuracyFactor) / total

	score := 100 * sampleFactor * blended
	if math.IsNaN(score) {
		return 0
	}
	return math.Min(math.Max(score, 0), 100)
}
