package models

import "time"

// PlayerGameLog represents one player's box score line for a game
type PlayerGameLog struct {
	PlayerID   int64     `db:"player_id" json:"player_id"`
	PlayerName string    `db:"player_name" json:"player_name"`
	Position   string    `db:"position" json:"position"`
	TeamAbbr   string    `db:"team_abbr" json:"team_abbr"`
	OppAbbr    string    `db:"opp_abbr" json:"opp_abbr"`
	GameDate   time.Time `db:"game_date" json:"game_date"`
	IsHome     bool      `db:"is_home" json:"is_home"`
	Minutes    float64   `db:"minutes" json:"minutes"`
	Points     float64   `db:"points" json:"points"`
	FGA        float64   `db:"fga" json:"fga"`
	FTA        float64   `db:"fta" json:"fta"`
	Turnovers  float64   `db:"turnovers" json:"turnovers"`
}

// Usage approximates possessions used by the player in the game
func (g PlayerGameLog) Usage() float64 {
	return g.FGA + 0.44*g.FTA + g.Turnovers
}

// TeamGameLog represents a team's pace and points allowed for a game
type TeamGameLog struct {
	TeamAbbr   string    `db:"team_abbr" json:"team_abbr"`
	OppAbbr    string    `db:"opp_abbr" json:"opp_abbr"`
	GameDate   time.Time `db:"game_date" json:"game_date"`
	PtsAllowed float64   `db:"pts_allowed" json:"pts_allowed"`
	GamePace   float64   `db:"game_pace" json:"game_pace"`
}
