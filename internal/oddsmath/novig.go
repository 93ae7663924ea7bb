package oddsmath

import (
	"errors"
	"fmt"
)

// ErrNoVig is returned when a two-way market carries no overround to remove
var ErrNoVig = errors.New("no vig detected")

// RemoveVigMultiplicative normalises a two-way market so both sides sum to 1.
// -110/-110 is 0.5238 each, 1.0476 total, and 0.5/0.5 after normalisation.
func RemoveVigMultiplicative(p1, p2 float64) (float64, float64, error) {
	if p1 <= 0 || p1 >= 1 || p2 <= 0 || p2 >= 1 {
		return 0, 0, fmt.Errorf("probabilities must be in (0,1): %v, %v", p1, p2)
	}
	total := p1 + p2
	if total <= 1.0 {
		return 0, 0, fmt.Errorf("%w: sum %.4f", ErrNoVig, total)
	}
	return p1 / total, p2 / total, nil
}

// FairPair converts both American prices and returns the no-vig probabilities
func FairPair(over, under int) (fairOver, fairUnder float64, err error) {
	pOver, err := ImpliedProbability(over)
	if err != nil {
		return 0, 0, err
	}
	pUnder, err := ImpliedProbability(under)
	if err != nil {
		return 0, 0, err
	}
	return RemoveVigMultiplicative(pOver, pUnder)
}

// Overround is the bookmaker margin of a two-way market, e.g. 0.0476 for -110/-110
func Overround(over, under int) (float64, error) {
	pOver, err := ImpliedProbability(over)
	if err != nil {
		return 0, err
	}
	pUnder, err := ImpliedProbability(under)
	if err != nil {
		return 0, err
	}
	return pOver + pUnder - 1.0, nil
}
