package policy

import "github.com/yourusername/sharpeye/internal/models"

const (
	// DefaultMinEdge is the minimum edge, in percentage points, to act on
	DefaultMinEdge = 3.0
	// DefaultMinConfidence is the minimum confidence score to act on
	DefaultMinConfidence = 55.0
)

// Thresholds are the tunable decision boundaries
type Thresholds struct {
	MinEdge       float64 `mapstructure:"min_edge" validate:"gte=0"`
	MinConfidence float64 `mapstructure:"min_confidence" validate:"gte=0,lte=100"`
}

// DefaultThresholds returns the production thresholds
func DefaultThresholds() Thresholds {
	return Thresholds{MinEdge: DefaultMinEdge, MinConfidence: DefaultMinConfidence}
}

// Policy maps edge and confidence to a recommendation
type Policy struct {
	thresholds Thresholds
}

// New creates a policy
func New(t Thresholds) *Policy {
	return &Policy{thresholds: t}
}

// Thresholds returns the active thresholds
func (p *Policy) Thresholds() Thresholds {
	return p.thresholds
}

// Recommend returns OVER or UNDER only when both the edge magnitude and the
// confidence clear their thresholds.
func (p *Policy) Recommend(edge, confidence float64) models.Recommendation {
	if confidence <= p.thresholds.MinConfidence {
		return models.RecommendationPass
	}
	switch {
	case edge > p.thresholds.MinEdge:
		return models.RecommendationOver
	case edge < -p.thresholds.MinEdge:
		return models.RecommendationUnder
	default:
		return models.RecommendationPass
	}
}
