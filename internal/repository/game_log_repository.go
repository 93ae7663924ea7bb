package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/sharpeye/internal/database"
	"github.com/yourusername/sharpeye/internal/models"
)

// PostgresGameLogRepository implements GameLogRepository for PostgreSQL
type PostgresGameLogRepository struct {
	db *database.DB
}

// NewPostgresGameLogRepository creates a new game log repository
func NewPostgresGameLogRepository(db *database.DB) GameLogRepository {
	return &PostgresGameLogRepository{db: db}
}

// PlayerGameLogs retrieves player box scores since the given date
func (r *PostgresGameLogRepository) PlayerGameLogs(ctx context.Context, since time.Time) ([]models.PlayerGameLog, error) {
	query := `
		SELECT player_id, player_name, COALESCE(position, ''), team_abbr, opp_abbr, game_date,
		       is_home, minutes, points, fga, fta, turnovers
		FROM player_game_logs
		WHERE game_date >= $1
		ORDER BY player_id, game_date ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query player game logs: %w", err)
	}

	logs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.PlayerGameLog, error) {
		var g models.PlayerGameLog
		err := row.Scan(
			&g.PlayerID, &g.PlayerName, &g.Position, &g.TeamAbbr, &g.OppAbbr, &g.GameDate,
			&g.IsHome, &g.Minutes, &g.Points, &g.FGA, &g.FTA, &g.Turnovers,
		)
		return g, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan player game logs: %w", err)
	}

	return logs, nil
}

// TeamGameLogs retrieves team defensive logs since the given date
func (r *PostgresGameLogRepository) TeamGameLogs(ctx context.Context, since time.Time) ([]models.TeamGameLog, error) {
	query := `
		SELECT team_abbr, opp_abbr, game_date, pts_allowed, COALESCE(game_pace, 0)
		FROM team_game_logs
		WHERE game_date >= $1
		ORDER BY team_abbr, game_date ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query team game logs: %w", err)
	}
	defer rows.Close()

	var logs []models.TeamGameLog
	for rows.Next() {
		var g models.TeamGameLog
		if err := rows.Scan(&g.TeamAbbr, &g.OppAbbr, &g.GameDate, &g.PtsAllowed, &g.GamePace); err != nil {
			return nil, fmt.Errorf("failed to scan team game log: %w", err)
		}
		logs = append(logs, g)
	}

	return logs, rows.Err()
}
