package estimator

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/yourusername/sharpeye/internal/models"
)

// LinearArtifact is the coefficients file exported by the training pipeline
type LinearArtifact struct {
	Version      string             `json:"version"`
	Intercept    float64            `json:"intercept"`
	Coefficients map[string]float64 `json:"coefficients"`
	MAE          float64            `json:"mae"`
}

// LinearModel scores a feature vector with fixed regression coefficients.
// Features absent from the vector contribute zero.
type LinearModel struct {
	artifact LinearArtifact
	names    []string
}

// NewLinearModel validates an in-memory artifact
func NewLinearModel(artifact LinearArtifact) (*LinearModel, error) {
	if len(artifact.Coefficients) == 0 {
		return nil, fmt.Errorf("%w: no coefficients", ErrInvalidArtifact)
	}
	if math.IsNaN(artifact.MAE) || math.IsInf(artifact.MAE, 0) || artifact.MAE < 0 {
		return nil, fmt.Errorf("%w: mae %v", ErrInvalidArtifact, artifact.MAE)
	}
	for name, c := range artifact.Coefficients {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, fmt.Errorf("%w: coefficient %s is not finite", ErrInvalidArtifact, name)
		}
	}
	names := make([]string, 0, len(artifact.Coefficients))
	for name := range artifact.Coefficients {
		names = append(names, name)
	}
	// fixed summation order keeps predictions bit-identical between calls
	sort.Strings(names)
	return &LinearModel{artifact: artifact, names: names}, nil
}

// LoadLinearModel reads a coefficients artifact from disk
func LoadLinearModel(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model artifact %s: %w", path, err)
	}

	var artifact LinearArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArtifact, path, err)
	}
	return NewLinearModel(artifact)
}

// LinearModelFromRegistry builds a model from a registered artifact. The
// registry's mae metric is used when the coefficients omit one.
func LinearModelFromRegistry(rec *models.ModelArtifact) (*LinearModel, error) {
	if rec.ModelType != BackendLinear {
		return nil, fmt.Errorf("%w: %s@%s has model type %q", ErrInvalidArtifact, rec.Name, rec.Version, rec.ModelType)
	}

	var artifact LinearArtifact
	if err := json.Unmarshal(rec.Artifact, &artifact); err != nil {
		return nil, fmt.Errorf("%w: %s@%s: %v", ErrInvalidArtifact, rec.Name, rec.Version, err)
	}
	artifact.Version = rec.Version
	if artifact.MAE == 0 {
		if mae, ok := rec.Metric("mae"); ok {
			artifact.MAE = mae
		}
	}
	return NewLinearModel(artifact)
}

// Version returns the artifact version string
func (m *LinearModel) Version() string {
	return m.artifact.Version
}

// Predict implements Model
func (m *LinearModel) Predict(ctx context.Context, features models.FeatureVector) (float64, float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	value := m.artifact.Intercept
	for _, name := range m.names {
		value += m.artifact.Coefficients[name] * features.Get(name)
	}
	return value, m.artifact.MAE, nil
}
