package oddsmath

import (
	"errors"
	"fmt"
)

// ErrInvalidOdds is returned for American odds that no book can quote
var ErrInvalidOdds = errors.New("invalid American odds")

// ValidAmerican reports whether a is a well-formed American price.
// Quotes live at or beyond +/-100.
func ValidAmerican(a int) bool {
	return a >= 100 || a <= -100
}

// ImpliedProbability converts an American price to the probability it represents,
// bookmaker margin included.
//
//	+150 -> 100/250 = 0.40
//	-110 -> 110/210 = 0.5238
func ImpliedProbability(american int) (float64, error) {
	if !ValidAmerican(american) {
		return 0, fmt.Errorf("%w: %d", ErrInvalidOdds, american)
	}
	if american > 0 {
		return 100.0 / (float64(american) + 100.0), nil
	}
	a := float64(-american)
	return a / (a + 100.0), nil
}

// ToDecimal converts an American price to decimal odds
func ToDecimal(american int) (float64, error) {
	if !ValidAmerican(american) {
		return 0, fmt.Errorf("%w: %d", ErrInvalidOdds, american)
	}
	if american > 0 {
		return float64(american)/100.0 + 1.0, nil
	}
	return 100.0/float64(-american) + 1.0, nil
}
