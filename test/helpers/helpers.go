// Package helpers builds on-disk fixtures shared by the integration and
// end-to-end tests.
package helpers

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yourusername/sharpeye/internal/config"
	"github.com/yourusername/sharpeye/internal/estimator"
	"github.com/yourusername/sharpeye/internal/models"
	"github.com/yourusername/sharpeye/internal/repository"
)

// FixturePlayer is a player present in GameLogs
type FixturePlayer struct {
	ID       int64
	Name     string
	Position string
	Team     string
	// Points cycles through these values, most recent game first
	Points []float64
	// Games overrides the per-player game count when positive
	Games int
}

// DefaultPlayers are a scorer and a bench player with a thin history
var DefaultPlayers = []FixturePlayer{
	{ID: 1, Name: "Test Guard", Position: "Guard", Team: "LAL", Points: []float64{21, 22, 20}},
	{ID: 2, Name: "Test Center", Position: "Center", Team: "BOS", Points: []float64{12, 9, 14, 11}, Games: 3},
}

// GameLogs returns games every other day before today for each player,
// plus matching team lines.
func GameLogs(players []FixturePlayer, games int) repository.GameLogFile {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	var out repository.GameLogFile

	for _, player := range players {
		n := games
		if player.Games > 0 {
			n = player.Games
		}
		for i := 1; i <= n; i++ {
			date := today.AddDate(0, 0, -2*i)
			out.Players = append(out.Players, models.PlayerGameLog{
				PlayerID:   player.ID,
				PlayerName: player.Name,
				Position:   player.Position,
				TeamAbbr:   player.Team,
				OppAbbr:    "MIA",
				GameDate:   date,
				IsHome:     i%2 == 0,
				Minutes:    32,
				Points:     player.Points[(i-1)%len(player.Points)],
				FGA:        16,
				FTA:        4,
				Turnovers:  2,
			})
		}
	}

	for i := 1; i <= games; i++ {
		date := today.AddDate(0, 0, -2*i)
		for _, team := range []string{"LAL", "BOS", "MIA"} {
			out.Teams = append(out.Teams, models.TeamGameLog{
				TeamAbbr:   team,
				OppAbbr:    "MIA",
				GameDate:   date,
				PtsAllowed: 110,
				GamePace:   100,
			})
		}
	}
	return out
}

// WriteJSON marshals v into path
func WriteJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))
}

// FileConfig returns a validated default configuration backed by fixture
// files in a temp dir: DefaultPlayers with up to ten games each and a PTS_L5
// identity model with the given MAE.
func FileConfig(t *testing.T, mae float64) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg, err := config.LoadWithDefaults(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)

	cfg.Features.SnapshotFile = filepath.Join(dir, "game_logs.json")
	WriteJSON(t, cfg.Features.SnapshotFile, GameLogs(DefaultPlayers, 10))

	cfg.Model.ArtifactPath = filepath.Join(dir, "model.json")
	WriteJSON(t, cfg.Model.ArtifactPath, estimator.LinearArtifact{
		Version:      "fixture",
		Coefficients: map[string]float64{"PTS_L5": 1},
		MAE:          mae,
	})

	cfg.Simulation.SampleCount = 2000
	require.NoError(t, config.Validate(cfg))
	return cfg
}

// Today is the UTC game date string for today
func Today() string {
	return time.Now().UTC().Format(models.GameDateLayout)
}
