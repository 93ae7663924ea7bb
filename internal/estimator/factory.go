package estimator

import (
	"context"
	"fmt"
	"time"

	"github.com/yourusername/sharpeye/internal/config"
	"github.com/yourusername/sharpeye/internal/logger"
	"github.com/yourusername/sharpeye/internal/models"
)

// Backend names accepted by model.backend
const (
	BackendLinear = "linear"
	BackendHTTP   = "http"
	BackendGRPC   = "grpc"
)

// ArtifactRegistry serves registered model artifacts
type ArtifactRegistry interface {
	GetActive(ctx context.Context, name string) (*models.ModelArtifact, error)
}

// NewFromConfig builds the configured backend, optionally behind the output cache
func NewFromConfig(cfg config.ModelConfig, log *logger.ModelLogger) (*Estimator, error) {
	var (
		model Model
		err   error
	)
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second

	switch cfg.Backend {
	case BackendLinear:
		model, err = LoadLinearModel(cfg.ArtifactPath)
	case BackendHTTP:
		httpCfg := DefaultHTTPModelConfig(cfg.HTTPURL)
		httpCfg.APIKey = cfg.APIKey
		httpCfg.Timeout = timeout
		httpCfg.MaxRetries = cfg.RetryAttempts
		httpCfg.RateLimit = cfg.RateLimitPerSecond
		model = NewHTTPModel(httpCfg)
	case BackendGRPC:
		model, err = NewGRPCModel(cfg.GRPCAddress, timeout)
	default:
		return nil, fmt.Errorf("unknown model backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	return wrap(cfg, model, log), nil
}

// NewFromRegistry builds a linear backend from the active artifact named in
// cfg.ArtifactName.
func NewFromRegistry(ctx context.Context, cfg config.ModelConfig, registry ArtifactRegistry, log *logger.ModelLogger) (*Estimator, error) {
	if cfg.Backend != BackendLinear {
		return nil, fmt.Errorf("model registry only serves the %s backend, got %q", BackendLinear, cfg.Backend)
	}

	rec, err := registry.GetActive(ctx, cfg.ArtifactName)
	if err != nil {
		return nil, err
	}
	model, err := LinearModelFromRegistry(rec)
	if err != nil {
		return nil, err
	}
	return wrap(cfg, model, log), nil
}

func wrap(cfg config.ModelConfig, model Model, log *logger.ModelLogger) *Estimator {
	if cfg.CacheEnabled && cfg.CacheTTLSeconds > 0 {
		model = NewCachedModel(model, time.Duration(cfg.CacheTTLSeconds)*time.Second)
	}
	return New(model, cfg.Backend, log)
}
