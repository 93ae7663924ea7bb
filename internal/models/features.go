package models

// DefenseQuality classifies an opponent's defense against a position
type DefenseQuality string

const (
	DefenseWeak    DefenseQuality = "Weak"
	DefenseAverage DefenseQuality = "Average"
	DefenseStrong  DefenseQuality = "Strong"
)

// PaceEnvironment classifies the expected tempo of a game
type PaceEnvironment string

const (
	PaceSlow    PaceEnvironment = "Slow"
	PaceAverage PaceEnvironment = "Average"
	PaceFast    PaceEnvironment = "Fast"
)

// FeatureSnapshot is the player's recent form computed strictly before the target date
type FeatureSnapshot struct {
	Last5Avg       float64 `json:"last_5_avg"`
	Last10Avg      float64 `json:"last_10_avg"`
	ConsistencyStd float64 `json:"consistency_std"`
	MinutesPerGame float64 `json:"minutes_per_game" validate:"gte=0"`
	RestDays       int     `json:"rest_days" validate:"gte=0"`
	PointsPerMin   float64 `json:"points_per_min"`
	UsageRate      float64 `json:"usage_rate"`
	GamesPlayed    int     `json:"games_played"`
}

// MatchupContext describes the opponent's defense
type MatchupContext struct {
	OpponentDefensePPG float64        `json:"opponent_defense_ppg"`
	DefenseVsPosition  float64        `json:"defense_vs_position"`
	DefenseQuality     DefenseQuality `json:"defense_quality"`
}

// PaceContext describes the expected game tempo
type PaceContext struct {
	PlayerTeamPace      float64         `json:"player_team_pace"`
	OpponentPace        float64         `json:"opponent_pace"`
	ExpectedGamePace    float64         `json:"expected_game_pace"`
	PaceEnvironment     PaceEnvironment `json:"pace_environment"`
	ExpectedPossessions float64         `json:"expected_possessions"`
}

// PlayerInfo identifies the player a feature set was built for
type PlayerInfo struct {
	PlayerID   int64  `json:"player_id"`
	PlayerName string `json:"player_name"`
	Position   string `json:"position"`
	TeamAbbr   string `json:"team_abbr"`
}

// FeatureVector is the named model input. Keys follow the training pipeline's
// column names.
type FeatureVector map[string]float64

// Get returns the named feature or zero
func (v FeatureVector) Get(name string) float64 {
	return v[name]
}

// FeatureSet is everything the aggregator produces for one request
type FeatureSet struct {
	Player          PlayerInfo      `json:"player"`
	OpponentAbbr    string          `json:"opponent_abbr"`
	Location        Location        `json:"location"`
	GameDate        string          `json:"game_date"`
	Snapshot        FeatureSnapshot `json:"snapshot"`
	Matchup         MatchupContext  `json:"matchup"`
	Pace            PaceContext     `json:"pace"`
	Vector          FeatureVector   `json:"vector"`
	SnapshotVersion uint64          `json:"snapshot_version"`
}
