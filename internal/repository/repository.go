package repository

import (
	"fmt"

	"github.com/yourusername/sharpeye/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	GameLogs GameLogRepository
	Models   ModelRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		GameLogs: NewPostgresGameLogRepository(db),
		Models:   NewPostgresModelRepository(db),
	}, nil
}
