package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/sharpeye/internal/models"
)

// GameLogRepository defines read access to the historical feature store
type GameLogRepository interface {
	// PlayerGameLogs returns every player box score on or after since
	PlayerGameLogs(ctx context.Context, since time.Time) ([]models.PlayerGameLog, error)

	// TeamGameLogs returns every team pace/defense line on or after since
	TeamGameLogs(ctx context.Context, since time.Time) ([]models.TeamGameLog, error)
}

// ModelRepository defines access to registered point model artifacts
type ModelRepository interface {
	Create(ctx context.Context, artifact *models.ModelArtifact) error
	GetActive(ctx context.Context, name string) (*models.ModelArtifact, error)
	GetByVersion(ctx context.Context, name, version string) (*models.ModelArtifact, error)
	SetActive(ctx context.Context, id uuid.UUID) error
}
