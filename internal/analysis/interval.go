package analysis

import (
	"math"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/yourusername/sharpeye/internal/models"
)

// Z90 is the half-width multiplier on MAE for 90% normal coverage:
// the 95th normal quantile times sqrt(pi/2), about 2.0615.
var Z90 = distuv.UnitNormal.Quantile(0.95) * math.Sqrt(math.Pi/2)

// BuildInterval returns predicted +/- Z90*mae, floored at zero and rounded
// the same way as the reported prediction so ordering survives rounding.
func BuildInterval(est models.PointEstimate) models.PredictionInterval {
	predicted := math.Max(est.PredictedPoints, 0)
	mae := math.Max(est.ModelMAE, 0)
	half := Z90 * mae

	return models.PredictionInterval{
		Lower90:  Round(math.Max(predicted-half, 0), 1),
		Upper90:  Round(predicted+half, 1),
		ModelMAE: Round(mae, 2),
	}
}

// Round rounds v half away from zero to the given decimal places. It is
// non-decreasing in v.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
