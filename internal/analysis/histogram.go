package analysis

import (
	"math"

	"github.com/yourusername/sharpeye/internal/models"
)

// DefaultHistogramBins matches the distribution chart's resolution
const DefaultHistogramBins = 50

// Histogram buckets samples into equal-width bins spanning their range
func Histogram(samples []float64, bins int) []models.HistogramBin {
	if len(samples) == 0 || bins <= 0 {
		return nil
	}

	lo, hi := samples[0], samples[0]
	for _, v := range samples[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	width := (hi - lo) / float64(bins)
	if width == 0 {
		width = 1
	}

	out := make([]models.HistogramBin, bins)
	for i := range out {
		out[i].Lower = lo + float64(i)*width
		out[i].Upper = lo + float64(i+1)*width
	}
	for _, v := range samples {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		out[idx].Count++
	}
	return out
}
