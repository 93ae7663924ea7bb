package features

import (
	"github.com/yourusername/sharpeye/internal/models"
)

// Feature names shared with the training pipeline
const (
	FeaturePtsL5               = "PTS_L5"
	FeaturePtsL10              = "PTS_L10"
	FeaturePtsStdL10           = "PTS_STD_L10"
	FeatureMinL5               = "MIN_L5"
	FeatureRestDays            = "REST_DAYS"
	FeatureIsHome              = "IS_HOME"
	FeatureDefPtsAllowedL5     = "DEF_PTS_ALLOWED_L5"
	FeatureDefPtsVsPositionL5  = "DEF_PTS_VS_POSITION_L5"
	FeaturePlayerTeamPaceL5    = "PLAYER_TEAM_PACE_L5"
	FeatureOppPaceL5           = "OPP_PACE_L5"
	FeatureExpectedGamePaceL5  = "EXPECTED_GAME_PACE_L5"
	FeatureExpectedPossessions = "EXPECTED_POSSESSIONS_L5"
	FeaturePtsPerMinL5         = "PTS_PER_MIN_L5"
	FeatureUsageL5             = "USAGE_L5"

	teamPrefix     = "TEAM_"
	opponentPrefix = "OPP_"
)

// BuildVector flattens a feature set into the model's named inputs. Every
// team appears in both one-hot groups so the vector shape is fixed.
func BuildVector(set *models.FeatureSet) models.FeatureVector {
	v := models.FeatureVector{
		FeaturePtsL5:               set.Snapshot.Last5Avg,
		FeaturePtsL10:              set.Snapshot.Last10Avg,
		FeaturePtsStdL10:           set.Snapshot.ConsistencyStd,
		FeatureMinL5:               set.Snapshot.MinutesPerGame,
		FeatureRestDays:            float64(set.Snapshot.RestDays),
		FeatureIsHome:              0,
		FeatureDefPtsAllowedL5:     set.Matchup.OpponentDefensePPG,
		FeatureDefPtsVsPositionL5:  set.Matchup.DefenseVsPosition,
		FeaturePlayerTeamPaceL5:    set.Pace.PlayerTeamPace,
		FeatureOppPaceL5:           set.Pace.OpponentPace,
		FeatureExpectedGamePaceL5:  set.Pace.ExpectedGamePace,
		FeatureExpectedPossessions: set.Pace.ExpectedPossessions,
		FeaturePtsPerMinL5:         set.Snapshot.PointsPerMin,
		FeatureUsageL5:             set.Snapshot.UsageRate,
	}
	if set.Location == models.LocationHome {
		v[FeatureIsHome] = 1
	}

	for abbr := range models.TeamNames {
		v[teamPrefix+abbr] = 0
		v[opponentPrefix+abbr] = 0
	}
	v[teamPrefix+set.Player.TeamAbbr] = 1
	v[opponentPrefix+set.OpponentAbbr] = 1

	return v
}
