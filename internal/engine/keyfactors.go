package engine

import (
	"fmt"

	"github.com/yourusername/sharpeye/internal/models"
)

// KeyFactorsFor summarises the drivers behind a prediction
func KeyFactorsFor(set *models.FeatureSet) models.KeyFactors {
	return models.KeyFactors{
		RecentForm:          recentForm(set.Snapshot.ConsistencyStd, set.Snapshot.Last5Avg),
		MatchupFavorability: matchupFavorability(set.Matchup.OpponentDefensePPG, set.Matchup.DefenseVsPosition),
		PaceImpact:          paceImpact(set.Pace.ExpectedGamePace),
		RestImpact:          restImpact(set.Snapshot.RestDays),
	}
}

func recentForm(std, last5 float64) string {
	consistency := "Volatile"
	switch {
	case std < 4:
		consistency = "Very consistent"
	case std < 6:
		consistency = "Consistent"
	}
	return fmt.Sprintf("%s scorer averaging %.1f PPG in last 5 games", consistency, last5)
}

func matchupFavorability(defensePPG, vsPosition float64) string {
	switch {
	case defensePPG > 115 || vsPosition > 60:
		return "Favorable"
	case defensePPG < 105 || vsPosition < 50:
		return "Unfavorable"
	default:
		return "Neutral"
	}
}

func paceImpact(expectedPace float64) string {
	switch {
	case expectedPace > 102:
		return "Positive"
	case expectedPace < 98:
		return "Negative"
	default:
		return "Neutral"
	}
}

func restImpact(days int) string {
	switch {
	case days >= 3:
		return "Well-rested"
	case days <= 1:
		return "Back-to-back"
	default:
		return "Normal"
	}
}
