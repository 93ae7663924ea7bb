package engine

import (
	"github.com/yourusername/sharpeye/internal/analysis"
	"github.com/yourusername/sharpeye/internal/models"
)

// buildResponse assembles everything but the Monte Carlo block
func buildResponse(set *models.FeatureSet, est models.PointEstimate) *models.PredictionResponse {
	snap := set.Snapshot
	return &models.PredictionResponse{
		PlayerName:      set.Player.PlayerName,
		Position:        set.Player.Position,
		Team:            set.Player.TeamAbbr,
		Opponent:        set.OpponentAbbr,
		Location:        set.Location,
		GameDate:        set.GameDate,
		PredictedPoints: analysis.Round(est.PredictedPoints, 1),
		PlayerStats: models.PlayerStats{
			Last5Avg:       analysis.Round(snap.Last5Avg, 1),
			Last10Avg:      analysis.Round(snap.Last10Avg, 1),
			ConsistencyStd: analysis.Round(snap.ConsistencyStd, 2),
			MinutesPerGame: analysis.Round(snap.MinutesPerGame, 1),
			RestDays:       snap.RestDays,
		},
		MatchupAnalysis: models.MatchupAnalysis{
			OpponentDefensePPG: analysis.Round(set.Matchup.OpponentDefensePPG, 1),
			DefenseVsPosition:  analysis.Round(set.Matchup.DefenseVsPosition, 1),
			DefenseQuality:     set.Matchup.DefenseQuality,
		},
		PaceContext: models.PaceView{
			PlayerTeamPace:      analysis.Round(set.Pace.PlayerTeamPace, 1),
			OpponentPace:        analysis.Round(set.Pace.OpponentPace, 1),
			ExpectedGamePace:    analysis.Round(set.Pace.ExpectedGamePace, 1),
			PaceEnvironment:     set.Pace.PaceEnvironment,
			ExpectedPossessions: analysis.Round(set.Pace.ExpectedPossessions, 1),
		},
		PredictionInterval: analysis.BuildInterval(est),
		KeyFactors:         KeyFactorsFor(set),
	}
}

// roundAnalysis rounds for display. Under is derived from the rounded over
// so the pair still sums to one.
func roundAnalysis(mc *models.MonteCarloAnalysis) *models.MonteCarloAnalysis {
	over := analysis.Round(mc.ProbabilityOver, 4)
	pct := make(map[int]float64, len(mc.Percentiles))
	for rank, v := range mc.Percentiles {
		pct[rank] = analysis.Round(v, 1)
	}
	return &models.MonteCarloAnalysis{
		ProbabilityOver:  over,
		ProbabilityUnder: analysis.Round(1-over, 4),
		Edge:             analysis.Round(mc.Edge, 2),
		ConfidenceScore:  analysis.Round(mc.ConfidenceScore, 1),
		Percentiles:      pct,
		Recommendation:   mc.Recommendation,
	}
}
