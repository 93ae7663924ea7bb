package database

import (
	"context"
	"fmt"

	"github.com/yourusername/sharpeye/internal/config"
)

// requiredTables are the feature store tables the game log loader reads
var requiredTables = []string{"player_game_logs", "team_game_logs"}

// Initialize creates a database connection pool and verifies the feature
// store schema is present.
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	for _, table := range requiredTables {
		var exists bool
		err := db.pool.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)", table,
		).Scan(&exists)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to inspect schema for %s: %w", table, err)
		}
		if !exists {
			db.Close()
			return nil, fmt.Errorf("feature store table %s not found; run the ingestion migrations first", table)
		}
	}

	return db, nil
}
