package models

import "time"

// Location is HOME or AWAY
type Location string

const (
	LocationHome Location = "HOME"
	LocationAway Location = "AWAY"
)

// GameDateLayout is the wire format of game dates
const GameDateLayout = "2006-01-02"

// PredictionRequest is the engine's input contract
type PredictionRequest struct {
	PlayerID   int64    `json:"player_id" validate:"required,gt=0"`
	OpponentID string   `json:"opponent_id" validate:"required,len=3,alpha"`
	Location   Location `json:"location" validate:"required,oneof=HOME AWAY"`
	GameDate   string   `json:"game_date" validate:"required,datetime=2006-01-02"`
	PropLine   *float64 `json:"prop_line,omitempty" validate:"omitempty,gt=0"`
	OverOdds   *int     `json:"over_odds,omitempty" validate:"omitempty,americanodds"`
	UnderOdds  *int     `json:"under_odds,omitempty" validate:"omitempty,americanodds"`
	Seed       *int64   `json:"seed,omitempty"`
}

// Date parses GameDate
func (r PredictionRequest) Date() (time.Time, error) {
	return time.Parse(GameDateLayout, r.GameDate)
}

// MarketLine returns the market line if a prop line was supplied
func (r PredictionRequest) MarketLine() (MarketLine, bool) {
	if r.PropLine == nil {
		return MarketLine{}, false
	}
	return MarketLine{PropLine: *r.PropLine, OverOdds: r.OverOdds, UnderOdds: r.UnderOdds}, true
}

// PropQuote is one entry on a props board
type PropQuote struct {
	PlayerID   int64    `json:"player_id" validate:"required,gt=0"`
	OpponentID string   `json:"opponent_id" validate:"required,len=3,alpha"`
	Location   Location `json:"location" validate:"required,oneof=HOME AWAY"`
	PropLine   float64  `json:"prop_line" validate:"gt=0"`
	OverOdds   *int     `json:"over_odds,omitempty" validate:"omitempty,americanodds"`
	UnderOdds  *int     `json:"under_odds,omitempty" validate:"omitempty,americanodds"`
}

// BoardRequest asks for a ranked props board on a single date
type BoardRequest struct {
	GameDate string      `json:"game_date" validate:"required,datetime=2006-01-02"`
	Props    []PropQuote `json:"props" validate:"required,min=1,max=200,dive"`
	Limit    int         `json:"limit" validate:"omitempty,gt=0"`
	Seed     *int64      `json:"seed,omitempty"`
}

// BoardEntry is one ranked prop. Direction is the side the simulation
// favours and Edge is measured against that side's price. Recommendation is
// the policy's call on the over-side edge, so against a heavily juiced
// favourite it can point the other way; Recommended is set only when the two
// agree.
type BoardEntry struct {
	PlayerID        int64          `json:"player_id"`
	PlayerName      string         `json:"player_name"`
	Team            string         `json:"team"`
	Opponent        string         `json:"opponent"`
	PropLine        float64        `json:"prop_line"`
	PredictedPoints float64        `json:"predicted_points"`
	Direction       Recommendation `json:"direction"`
	Probability     float64        `json:"probability"`
	Edge            float64        `json:"edge"`
	FairProbability *float64       `json:"fair_probability"`
	ConfidenceScore float64        `json:"confidence_score"`
	Recommendation  Recommendation `json:"recommendation"`
	Recommended     bool           `json:"recommended"`
}

// BoardResponse is the ranked props board
type BoardResponse struct {
	GameDate string       `json:"game_date"`
	Entries  []BoardEntry `json:"entries"`
	Skipped  []BoardSkip  `json:"skipped"`
}

// BoardSkip records a prop that could not be analysed
type BoardSkip struct {
	PlayerID int64  `json:"player_id"`
	Reason   string `json:"reason"`
}

// HistogramBin is one bar of the outcome distribution
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Distribution is the visualisation payload for a single player prop
type Distribution struct {
	PlayerID        int64           `json:"player_id"`
	PlayerName      string          `json:"player_name"`
	PredictedPoints float64         `json:"predicted_points"`
	PropLine        float64         `json:"prop_line"`
	LinePercentile  float64         `json:"line_percentile"`
	Bins            []HistogramBin  `json:"bins"`
	Percentiles     map[int]float64 `json:"percentiles"`
}
