// Package api exposes the prediction engine over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/sharpeye/internal/models"
)

// Engine is the prediction surface the handlers call
type Engine interface {
	Predict(ctx context.Context, req models.PredictionRequest) (*models.PredictionResponse, error)
	Board(ctx context.Context, req models.BoardRequest) (*models.BoardResponse, error)
	Distribution(ctx context.Context, req models.PredictionRequest) (*models.Distribution, error)
}

// ResponseCache stores prediction payloads for seeded requests
type ResponseCache interface {
	Get(ctx context.Context, key string) (*models.PredictionResponse, bool, error)
	Set(ctx context.Context, key string, resp *models.PredictionResponse) error
}

// Config holds router settings
type Config struct {
	AllowedOrigins     []string
	RateLimitPerSecond float64
	RateLimitBurst     int
	MaxBodyBytes       int64
	HandlerTimeout     time.Duration
	MetricsPath        string
	MetricsHandler     http.Handler
	// SnapshotVersion keys cached responses so a refresh invalidates them
	SnapshotVersion func() uint64
}

// Server holds the handler dependencies
type Server struct {
	engine Engine
	cache  ResponseCache
	logger *logrus.Logger
	cfg    Config
}

// NewServer creates a server. cache may be nil.
func NewServer(engine Engine, cache ResponseCache, logger *logrus.Logger, cfg Config) *Server {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	if cfg.SnapshotVersion == nil {
		cfg.SnapshotVersion = func() uint64 { return 0 }
	}
	return &Server{engine: engine, cache: cache, logger: logger, cfg: cfg}
}

// Router builds the HTTP routes and middleware chain
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(RequestID)
	r.Use(RequestLogger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(SecurityHeaders)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader, "Retry-After"},
		MaxAge:         300,
	}))

	if s.cfg.MetricsHandler != nil {
		path := s.cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, s.cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if s.cfg.RateLimitPerSecond > 0 {
			r.Use(RateLimit(s.cfg.RateLimitPerSecond, s.cfg.RateLimitBurst))
		}

		// long-lived, so outside the handler timeout
		r.Get("/stream", s.handleStream)

		r.Group(func(r chi.Router) {
			if s.cfg.HandlerTimeout > 0 {
				r.Use(chimiddleware.Timeout(s.cfg.HandlerTimeout))
			}
			r.Post("/predict", s.handlePredict)
			r.Post("/props/board", s.handleBoard)
			r.Get("/props/{player_id}/distribution", s.handleDistribution)
		})
	})

	return r
}
