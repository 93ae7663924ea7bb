package simulation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlendKnownValue(t *testing.T) {
	p := DefaultSpreadPolicy()
	// 0.5*(4.5*1.2533)^2 + 0.5*25 = 15.904 + 12.5
	assert.InDelta(t, math.Sqrt(28.404), p.Blend(4.5, 5.0), 1e-3)
}

func TestBlendNeverBelowFloor(t *testing.T) {
	p := DefaultSpreadPolicy()
	assert.Equal(t, p.MinSpread, p.Blend(0, 0))
	assert.Equal(t, p.MinSpread, p.Blend(-3, -1))
	assert.Greater(t, p.Blend(0, 0), 0.0)
}

func TestBlendMonotonic(t *testing.T) {
	p := DefaultSpreadPolicy()
	prev := 0.0
	for mae := 0.0; mae <= 10; mae += 0.5 {
		got := p.Blend(mae, 3)
		assert.GreaterOrEqual(t, got, prev)
		prev = got
	}
	prev = 0.0
	for std := 0.0; std <= 10; std += 0.5 {
		got := p.Blend(3, std)
		assert.GreaterOrEqual(t, got, prev)
		prev = got
	}
}

func TestBlendNonFinite(t *testing.T) {
	p := DefaultSpreadPolicy()
	assert.True(t, math.IsNaN(p.Blend(math.NaN(), 1)))
	assert.True(t, math.IsNaN(p.Blend(1, math.Inf(1))))
}

func TestSpreadPolicyValid(t *testing.T) {
	assert.True(t, DefaultSpreadPolicy().Valid())
	assert.False(t, SpreadPolicy{ModelWeight: 0, FormWeight: 0, MinSpread: 1}.Valid())
	assert.False(t, SpreadPolicy{ModelWeight: 1, FormWeight: 1, MinSpread: 0}.Valid())
}
