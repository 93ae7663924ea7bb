// Package app assembles the prediction engine and its supporting services
// from configuration.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/sharpeye/internal/analysis"
	"github.com/yourusername/sharpeye/internal/cache"
	"github.com/yourusername/sharpeye/internal/config"
	"github.com/yourusername/sharpeye/internal/database"
	"github.com/yourusername/sharpeye/internal/engine"
	"github.com/yourusername/sharpeye/internal/estimator"
	"github.com/yourusername/sharpeye/internal/features"
	"github.com/yourusername/sharpeye/internal/logger"
	"github.com/yourusername/sharpeye/internal/policy"
	"github.com/yourusername/sharpeye/internal/repository"
	"github.com/yourusername/sharpeye/internal/scheduler"
	"github.com/yourusername/sharpeye/internal/simulation"
)

// App holds every long-lived component built from configuration
type App struct {
	Config    *config.Config
	Logger    *logrus.Logger
	DB        *database.DB
	Store     *features.Store
	Refresher *features.Refresher
	Estimator *estimator.Estimator
	Engine    *engine.Engine
	Scheduler *scheduler.Scheduler
	Redis     *redis.Client
	Cache     *cache.ResponseCache
}

// Build wires the application. The feature snapshot is not loaded; call
// Refresh before serving.
func Build(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: log}
	modelLog := logger.NewModelLogger(log)

	repo, err := a.gameLogs(ctx)
	if err != nil {
		return nil, err
	}

	a.Store = features.NewStore()
	a.Refresher = features.NewRefresher(
		repo,
		a.Store,
		modelLog,
		cfg.Features.LookbackDays,
		time.Duration(cfg.Features.LoadTimeoutSeconds)*time.Second,
	)

	a.Estimator, err = a.estimator(ctx, modelLog)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to build point estimator: %w", err)
	}

	aggregator := features.NewAggregator(a.Store, features.Config{
		MinGames:        cfg.Features.MinGames,
		DefenseBaseline: cfg.Features.DefenseBaseline,
		DefenseBand:     cfg.Features.DefenseBand,
		PaceFast:        cfg.Features.PaceFastThreshold,
		PaceSlow:        cfg.Features.PaceSlowThreshold,
	})

	spread := simulation.SpreadPolicy{
		ModelWeight: cfg.Simulation.ModelWeight,
		FormWeight:  cfg.Simulation.FormWeight,
		MinSpread:   cfg.Simulation.MinSpread,
	}
	if !spread.Valid() {
		a.Close()
		return nil, fmt.Errorf("invalid spread policy: %+v", spread)
	}

	a.Engine = engine.New(engine.Deps{
		Features:  aggregator,
		Estimator: a.Estimator,
		Sampler:   simulation.NewSampler(spread, cfg.Simulation.Workers, cfg.Simulation.ChunkSize),
		Analyzer: analysis.NewAnalyzer(analysis.ConfidenceWeights{
			SpreadWeight:   cfg.Policy.SpreadWeight,
			AccuracyWeight: cfg.Policy.AccuracyWeight,
			SampleHalfLife: cfg.Policy.SampleHalfLife,
		}),
		Policy: policy.New(policy.Thresholds{
			MinEdge:       cfg.Policy.MinEdge,
			MinConfidence: cfg.Policy.MinConfidence,
		}),
		Logger: logger.NewPredictionLogger(log),
	}, engine.Config{
		SampleCount:      cfg.Simulation.SampleCount,
		HistogramBins:    cfg.Simulation.HistogramBins,
		RequestTimeout:   cfg.RequestTimeout(),
		BoardConcurrency: cfg.Engine.BoardConcurrency,
		BoardMaxProps:    cfg.Engine.BoardMaxProps,
	})

	if cfg.Redis.Enabled {
		a.Redis = cache.NewClient(cfg.Redis)
		a.Cache = cache.NewResponseCache(a.Redis, time.Duration(cfg.Redis.TTLSeconds)*time.Second)
	}

	return a, nil
}

// repositories connects to the database on first use
func (a *App) repositories(ctx context.Context, purpose string) (*repository.Repositories, error) {
	if !a.Config.Database.Enabled {
		return nil, fmt.Errorf("%s is postgres but database is disabled", purpose)
	}
	if a.DB == nil {
		db, err := database.Initialize(ctx, a.Config)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.DB = db
		a.Logger.Info("Database connection established")
	}
	return repository.NewRepositories(a.DB)
}

func (a *App) gameLogs(ctx context.Context) (repository.GameLogRepository, error) {
	switch a.Config.Features.Source {
	case "file":
		return repository.NewFileGameLogRepository(a.Config.Features.SnapshotFile), nil
	case "postgres":
		repos, err := a.repositories(ctx, "features.source")
		if err != nil {
			return nil, err
		}
		return repos.GameLogs, nil
	default:
		return nil, fmt.Errorf("unknown features.source %q", a.Config.Features.Source)
	}
}

func (a *App) estimator(ctx context.Context, log *logger.ModelLogger) (*estimator.Estimator, error) {
	if a.Config.Model.ArtifactSource != "postgres" {
		return estimator.NewFromConfig(a.Config.Model, log)
	}

	repos, err := a.repositories(ctx, "model.artifact_source")
	if err != nil {
		return nil, err
	}
	est, err := estimator.NewFromRegistry(ctx, a.Config.Model, repos.Models, log)
	if err != nil {
		return nil, err
	}
	a.Logger.WithField("artifact", a.Config.Model.ArtifactName).Info("Loaded point model from registry")
	return est, nil
}

// LoadSnapshot performs the initial feature snapshot load
func (a *App) LoadSnapshot(ctx context.Context) error {
	if err := a.Refresher.Refresh(ctx); err != nil {
		return fmt.Errorf("initial snapshot load failed: %w", err)
	}
	return nil
}

// StartScheduler starts periodic snapshot refreshes when a schedule is set
func (a *App) StartScheduler() error {
	expr := a.Config.Features.RefreshSchedule
	if expr == "" {
		return nil
	}

	s := scheduler.NewScheduler(a.Refresher, a.Logger, time.Duration(a.Config.Features.LoadTimeoutSeconds)*time.Second)
	if err := s.ScheduleSnapshotRefresh(expr); err != nil {
		return err
	}
	if err := s.Start(); err != nil {
		return err
	}
	a.Scheduler = s
	return nil
}

// Close releases every resource Build acquired
func (a *App) Close() {
	if a.Scheduler != nil && a.Scheduler.IsRunning() {
		a.Scheduler.Stop()
	}
	if a.Estimator != nil {
		if err := a.Estimator.Close(); err != nil {
			a.Logger.WithError(err).Warn("Failed to close point estimator")
		}
	}
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			a.Logger.WithError(err).Warn("Failed to close response cache")
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
}
