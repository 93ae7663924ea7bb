// Package main provides the entry point for the SharpEye prediction API.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/sharpeye/internal/api"
	"github.com/yourusername/sharpeye/internal/app"
	"github.com/yourusername/sharpeye/internal/config"
	"github.com/yourusername/sharpeye/internal/health"
	"github.com/yourusername/sharpeye/internal/logger"
	"github.com/yourusername/sharpeye/internal/metrics"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := config.LoadSecretsFromAWS(ctx, cfg); err != nil {
		log.Fatalf("Failed to load secrets: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLog := logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"version":     Version,
		"backend":     cfg.Model.Backend,
	}).Info("SharpEye API starting")

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}

	a, err := app.Build(ctx, cfg, appLog)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to build application")
	}
	defer a.Close()

	// a failed first load leaves /ready reporting not_loaded until the scheduler succeeds
	if err := a.LoadSnapshot(ctx); err != nil {
		appLog.WithError(err).Error("Serving without a feature snapshot")
	}
	if err := a.StartScheduler(); err != nil {
		appLog.WithError(err).Fatal("Failed to start snapshot scheduler")
	}

	deps := map[string]health.Pinger{}
	if a.DB != nil {
		deps["database"] = a.DB
	}
	if a.Cache != nil {
		deps["redis"] = a.Cache
	}
	healthServer := health.NewServer(health.Config{
		ServiceName:  cfg.App.Name,
		Version:      Version,
		Commit:       GitCommit,
		Port:         strconv.Itoa(cfg.Server.HealthPort),
		Logger:       appLog,
		Dependencies: deps,
		Snapshot:     a.Store,
	})
	if err := healthServer.Start(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to start health server")
	}

	apiCfg := api.Config{
		AllowedOrigins:     cfg.Server.AllowedOrigins,
		RateLimitPerSecond: cfg.Server.RateLimitPerSecond,
		RateLimitBurst:     cfg.Server.RateLimitBurst,
		HandlerTimeout:     cfg.RequestTimeout() + time.Second,
		SnapshotVersion:    a.Store.Version,
	}
	if cfg.Metrics.Enabled {
		apiCfg.MetricsPath = cfg.Metrics.Path
		apiCfg.MetricsHandler = metrics.Handler()
	}

	var responseCache api.ResponseCache
	if a.Cache != nil {
		responseCache = a.Cache
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      api.NewServer(a.Engine, responseCache, appLog, apiCfg).Router(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLog.WithField("address", cfg.Server.Address).Info("API server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.WithError(err).Error("API server error")
			cancel()
		}
	}()
	healthServer.SetReady(true)

	<-ctx.Done()
	appLog.Info("Shutdown signal received")
	healthServer.SetReady(false)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.WithError(err).Error("Error during API server shutdown")
	}

	appLog.Info("SharpEye API shut down")
}
