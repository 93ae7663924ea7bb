// Package estimator turns a feature vector into a point estimate of a player's scoring.
package estimator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/yourusername/sharpeye/internal/logger"
	"github.com/yourusername/sharpeye/internal/models"
)

// Model is the capability every backend offers: a predicted value and the
// backend's mean absolute error.
type Model interface {
	Predict(ctx context.Context, features models.FeatureVector) (value, mae float64, err error)
}

// cacheAware is implemented by models that can report whether an answer came
// from cache.
type cacheAware interface {
	predictCached(ctx context.Context, features models.FeatureVector) (value, mae float64, hit bool, err error)
}

// Estimator wraps a Model and enforces the output contract: finite values,
// non-negative MAE and predictions clamped at zero.
type Estimator struct {
	model   Model
	backend string
	log     *logger.ModelLogger
}

// New creates an estimator around model
func New(model Model, backend string, log *logger.ModelLogger) *Estimator {
	return &Estimator{
		model:   model,
		backend: backend,
		log:     log,
	}
}

// Backend returns the configured backend name
func (e *Estimator) Backend() string {
	return e.backend
}

// Estimate asks the model for a point estimate. Every failure is reported as
// models.ErrModelUnavailable; nothing is retried here.
func (e *Estimator) Estimate(ctx context.Context, set *models.FeatureSet) (models.PointEstimate, error) {
	if set == nil || len(set.Vector) == 0 {
		return models.PointEstimate{}, fmt.Errorf("%w: empty feature vector", models.ErrModelUnavailable)
	}

	start := time.Now()
	var (
		value, mae float64
		hit        bool
		err        error
	)
	if cm, ok := e.model.(cacheAware); ok {
		value, mae, hit, err = cm.predictCached(ctx, set.Vector)
	} else {
		value, mae, err = e.model.Predict(ctx, set.Vector)
	}
	latency := time.Since(start)
	ModelLatency.WithLabelValues(e.backend).Observe(latency.Seconds())

	if err != nil {
		return models.PointEstimate{}, e.fail("call_failed", err)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return models.PointEstimate{}, e.fail("non_finite", fmt.Errorf("prediction %v is not finite", value))
	}
	if math.IsNaN(mae) || math.IsInf(mae, 0) || mae < 0 {
		return models.PointEstimate{}, e.fail("invalid_mae", fmt.Errorf("mae %v is not a finite non-negative number", mae))
	}

	if value < 0 {
		value = 0
	}

	ModelPredictionsTotal.WithLabelValues(e.backend, strconv.FormatBool(hit)).Inc()
	if e.log != nil {
		e.log.LogModelCall(e.backend, len(set.Vector), hit, latency)
	}

	return models.PointEstimate{PredictedPoints: value, ModelMAE: mae}, nil
}

// Close releases the model's resources if it holds any
func (e *Estimator) Close() error {
	if c, ok := e.model.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (e *Estimator) fail(kind string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		kind = "timeout"
	}
	ModelErrorsTotal.WithLabelValues(e.backend, kind).Inc()
	if e.log != nil {
		e.log.LogModelError(e.backend, err)
	}
	return fmt.Errorf("%w: %s: %w", models.ErrModelUnavailable, e.backend, err)
}
