package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/sharpeye/internal/database"
	"github.com/yourusername/sharpeye/internal/models"
)

const artifactColumns = `id, name, version, model_type, artifact, metrics, trained_at, active, created_at, updated_at`

// PostgresModelRepository implements ModelRepository for PostgreSQL
type PostgresModelRepository struct {
	db *database.DB
}

// NewPostgresModelRepository creates a new model repository
func NewPostgresModelRepository(db *database.DB) ModelRepository {
	return &PostgresModelRepository{db: db}
}

// Create registers a new model artifact
func (m *PostgresModelRepository) Create(ctx context.Context, a *models.ModelArtifact) error {
	query := `
		INSERT INTO model_artifacts (id, name, version, model_type, artifact, metrics, trained_at, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := m.db.GetPool().Exec(ctx, query,
		a.ID, a.Name, a.Version, a.ModelType, a.Artifact, a.Metrics, a.TrainedAt, a.Active,
	)
	if err != nil {
		return fmt.Errorf("failed to register model artifact: %w", err)
	}
	return nil
}

// GetActive returns the active artifact registered under name
func (m *PostgresModelRepository) GetActive(ctx context.Context, name string) (*models.ModelArtifact, error) {
	query := `SELECT ` + artifactColumns + `
		FROM model_artifacts
		WHERE name = $1 AND active = true
		ORDER BY trained_at DESC
		LIMIT 1`

	a, err := scanArtifact(m.db.GetPool().QueryRow(ctx, query, name))
	if err != nil {
		return nil, fmt.Errorf("failed to get active model %s: %w", name, err)
	}
	return a, nil
}

// GetByVersion returns a specific artifact version
func (m *PostgresModelRepository) GetByVersion(ctx context.Context, name, version string) (*models.ModelArtifact, error) {
	query := `SELECT ` + artifactColumns + `
		FROM model_artifacts
		WHERE name = $1 AND version = $2`

	a, err := scanArtifact(m.db.GetPool().QueryRow(ctx, query, name, version))
	if err != nil {
		return nil, fmt.Errorf("failed to get model %s@%s: %w", name, version, err)
	}
	return a, nil
}

// SetActive activates one artifact and deactivates every other version of
// the same name in a single transaction.
func (m *PostgresModelRepository) SetActive(ctx context.Context, id uuid.UUID) error {
	tx, err := m.db.GetPool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var name string
	err = tx.QueryRow(ctx, "SELECT name FROM model_artifacts WHERE id = $1", id).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrArtifactNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to look up model artifact: %w", err)
	}

	if _, err := tx.Exec(ctx, "UPDATE model_artifacts SET active = false, updated_at = NOW() WHERE name = $1 AND id != $2", name, id); err != nil {
		return fmt.Errorf("failed to deactivate other versions: %w", err)
	}
	if _, err := tx.Exec(ctx, "UPDATE model_artifacts SET active = true, updated_at = NOW() WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to activate model artifact: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func scanArtifact(row pgx.Row) (*models.ModelArtifact, error) {
	a := &models.ModelArtifact{}
	err := row.Scan(
		&a.ID, &a.Name, &a.Version, &a.ModelType, &a.Artifact, &a.Metrics,
		&a.TrainedAt, &a.Active, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrArtifactNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}
