package models

// Recommendation is the discrete action derived from edge and confidence
type Recommendation string

const (
	RecommendationOver  Recommendation = "OVER"
	RecommendationUnder Recommendation = "UNDER"
	RecommendationPass  Recommendation = "PASS"
)

// PercentileRanks are the ranks reported in every Monte Carlo analysis
var PercentileRanks = []int{5, 10, 25, 50, 75, 90, 95}

// PointEstimate is the estimator output for a single request
type PointEstimate struct {
	PredictedPoints float64 `json:"predicted_points"`
	ModelMAE        float64 `json:"model_mae" validate:"gte=0"`
}

// MarketLine represents the line being forecast against plus the book's quotes
type MarketLine struct {
	PropLine  float64 `json:"prop_line" validate:"gt=0"`
	OverOdds  *int    `json:"over_odds"`
	UnderOdds *int    `json:"under_odds"`
}

// HasOverOdds reports whether the over side is quoted
func (m MarketLine) HasOverOdds() bool {
	return m.OverOdds != nil
}

// HasBothSides reports whether both sides are quoted
func (m MarketLine) HasBothSides() bool {
	return m.OverOdds != nil && m.UnderOdds != nil
}

// MonteCarloAnalysis holds the probabilities and decision derived from a sample set
type MonteCarloAnalysis struct {
	ProbabilityOver  float64         `json:"probability_over"`
	ProbabilityUnder float64         `json:"probability_under"`
	Edge             float64         `json:"edge"`
	ConfidenceScore  float64         `json:"confidence_score"`
	Percentiles      map[int]float64 `json:"percentiles"`
	Recommendation   Recommendation  `json:"recommendation"`
}

// PredictionInterval is the reported 90% interval around the point estimate
type PredictionInterval struct {
	Lower90  float64 `json:"lower_90"`
	Upper90  float64 `json:"upper_90"`
	ModelMAE float64 `json:"model_mae"`
}

// Contains checks the interval brackets the given value
func (p PredictionInterval) Contains(v float64) bool {
	return p.Lower90 <= v && v <= p.Upper90
}

// KeyFactors are short human readable drivers behind a prediction
type KeyFactors struct {
	RecentForm          string `json:"recent_form"`
	MatchupFavorability string `json:"matchup_favorability"`
	PaceImpact          string `json:"pace_impact"`
	RestImpact          string `json:"rest_impact"`
}

// PlayerStats is the response view of a FeatureSnapshot
type PlayerStats struct {
	Last5Avg       float64 `json:"last_5_avg"`
	Last10Avg      float64 `json:"last_10_avg"`
	ConsistencyStd float64 `json:"consistency_std"`
	MinutesPerGame float64 `json:"minutes_per_game"`
	RestDays       int     `json:"rest_days"`
}

// MatchupAnalysis is the response view of a MatchupContext
type MatchupAnalysis struct {
	OpponentDefensePPG float64        `json:"opponent_defense_ppg"`
	DefenseVsPosition  float64        `json:"defense_vs_position"`
	DefenseQuality     DefenseQuality `json:"defense_quality"`
}

// PaceView is the response view of a PaceContext
type PaceView struct {
	PlayerTeamPace      float64         `json:"player_team_pace"`
	OpponentPace        float64         `json:"opponent_pace"`
	ExpectedGamePace    float64         `json:"expected_game_pace"`
	PaceEnvironment     PaceEnvironment `json:"pace_environment"`
	ExpectedPossessions float64         `json:"expected_possessions"`
}

// PredictionResponse is the engine's sole externally visible artifact.
// MonteCarlo is nil in degraded mode.
type PredictionResponse struct {
	PlayerName         string              `json:"player_name"`
	Position           string              `json:"position"`
	Team               string              `json:"team"`
	Opponent           string              `json:"opponent"`
	Location           Location            `json:"location"`
	GameDate           string              `json:"game_date"`
	PredictedPoints    float64             `json:"predicted_points"`
	PlayerStats        PlayerStats         `json:"player_stats"`
	MatchupAnalysis    MatchupAnalysis     `json:"matchup_analysis"`
	PaceContext        PaceView            `json:"pace_context"`
	PredictionInterval PredictionInterval  `json:"prediction_interval"`
	MonteCarlo         *MonteCarloAnalysis `json:"monte_carlo"`
	KeyFactors         KeyFactors          `json:"key_factors"`
}

// Degraded reports whether the response was returned without simulation detail
func (r *PredictionResponse) Degraded() bool {
	return r.MonteCarlo == nil
}
