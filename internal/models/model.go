package models

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrArtifactNotFound is returned when no registered model artifact matches
var ErrArtifactNotFound = errors.New("model artifact not found")

// ModelArtifact is a registered point model. Only one version per name is
// active at a time.
type ModelArtifact struct {
	ID        uuid.UUID       `db:"id" json:"id" validate:"required"`
	Name      string          `db:"name" json:"name" validate:"required"`
	Version   string          `db:"version" json:"version" validate:"required"`
	ModelType string          `db:"model_type" json:"model_type" validate:"required"`
	Artifact  json.RawMessage `db:"artifact" json:"artifact"`
	Metrics   json.RawMessage `db:"metrics" json:"metrics"`
	TrainedAt time.Time       `db:"trained_at" json:"trained_at" validate:"required"`
	Active    bool            `db:"active" json:"active"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// Metric returns a numeric training metric, such as "mae"
func (m *ModelArtifact) Metric(name string) (float64, bool) {
	if len(m.Metrics) == 0 {
		return 0, false
	}

	var metrics map[string]float64
	if err := json.Unmarshal(m.Metrics, &metrics); err != nil {
		return 0, false
	}
	v, ok := metrics[name]
	return v, ok
}
