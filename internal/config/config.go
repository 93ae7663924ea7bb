// Package config provides configuration management for the SharpEye props engine.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Features   FeaturesConfig   `mapstructure:"features" validate:"required"`
	Model      ModelConfig      `mapstructure:"model" validate:"required"`
	Simulation SimulationConfig `mapstructure:"simulation" validate:"required"`
	Policy     PolicyConfig     `mapstructure:"policy" validate:"required"`
	Engine     EngineConfig     `mapstructure:"engine" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Secrets    SecretsConfig    `mapstructure:"secrets"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// ServerConfig represents the HTTP API listener
type ServerConfig struct {
	Address             string   `mapstructure:"address" validate:"required"`
	HealthPort          int      `mapstructure:"health_port" validate:"required,min=1,max=65535"`
	ReadTimeoutSeconds  int      `mapstructure:"read_timeout_seconds" validate:"required,gt=0"`
	WriteTimeoutSeconds int      `mapstructure:"write_timeout_seconds" validate:"required,gt=0"`
	RateLimitPerSecond  float64  `mapstructure:"rate_limit_per_second" validate:"gt=0"`
	RateLimitBurst      int      `mapstructure:"rate_limit_burst" validate:"gt=0"`
	AllowedOrigins      []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host                string `mapstructure:"host" validate:"required_if=Enabled true"`
	Port                int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name                string `mapstructure:"name" validate:"required_if=Enabled true"`
	User                string `mapstructure:"user" validate:"required_if=Enabled true"`
	Password            string `mapstructure:"password"`
	SSLMode             string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections      int    `mapstructure:"max_connections" validate:"gte=0"`
	QueryTimeoutSeconds int    `mapstructure:"query_timeout_seconds" validate:"gte=0"`
	Enabled             bool   `mapstructure:"enabled"`
}

// RedisConfig represents the optional response cache
type RedisConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Address    string `mapstructure:"address" validate:"required_if=Enabled true"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db" validate:"gte=0"`
	TTLSeconds int    `mapstructure:"ttl_seconds" validate:"gte=0"`
}

// FeaturesConfig represents the feature store and aggregation constants
type FeaturesConfig struct {
	Source             string  `mapstructure:"source" validate:"required,oneof=postgres file"`
	SnapshotFile       string  `mapstructure:"snapshot_file" validate:"required_if=Source file"`
	MinGames           int     `mapstructure:"min_games" validate:"required,gt=0"`
	LookbackDays       int     `mapstructure:"lookback_days" validate:"required,gt=0"`
	DefenseBaseline    float64 `mapstructure:"defense_baseline" validate:"required,gt=0"`
	DefenseBand        float64 `mapstructure:"defense_band" validate:"gte=0"`
	PaceFastThreshold  float64 `mapstructure:"pace_fast_threshold" validate:"required,gt=0"`
	PaceSlowThreshold  float64 `mapstructure:"pace_slow_threshold" validate:"required,gt=0"`
	RefreshSchedule    string  `mapstructure:"refresh_schedule"`
	LoadTimeoutSeconds int     `mapstructure:"load_timeout_seconds" validate:"required,gt=0"`
}

// ModelConfig represents the point estimator backend
type ModelConfig struct {
	Backend            string  `mapstructure:"backend" validate:"required,modelbackend"`
	ArtifactSource     string  `mapstructure:"artifact_source" validate:"omitempty,oneof=file postgres"`
	ArtifactPath       string  `mapstructure:"artifact_path" validate:"required_if=Backend linear ArtifactSource file"`
	ArtifactName       string  `mapstructure:"artifact_name" validate:"required_if=ArtifactSource postgres"`
	HTTPURL            string  `mapstructure:"http_url" validate:"required_if=Backend http"`
	GRPCAddress        string  `mapstructure:"grpc_address" validate:"required_if=Backend grpc"`
	APIKey             string  `mapstructure:"api_key"`
	TimeoutSeconds     int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RetryAttempts      int     `mapstructure:"retry_attempts" validate:"gte=0,lte=10"`
	RateLimitPerSecond float64 `mapstructure:"rate_limit_per_second" validate:"gte=0"`
	CacheEnabled       bool    `mapstructure:"cache_enabled"`
	CacheTTLSeconds    int     `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
}

// SimulationConfig represents the Monte Carlo sampler
type SimulationConfig struct {
	SampleCount   int     `mapstructure:"sample_count" validate:"required,gt=0,lte=1000000"`
	Workers       int     `mapstructure:"workers" validate:"gte=0"`
	ChunkSize     int     `mapstructure:"chunk_size" validate:"gte=0"`
	ModelWeight   float64 `mapstructure:"model_weight" validate:"gte=0"`
	FormWeight    float64 `mapstructure:"form_weight" validate:"gte=0"`
	MinSpread     float64 `mapstructure:"min_spread" validate:"required,gt=0"`
	HistogramBins int     `mapstructure:"histogram_bins" validate:"required,gt=0,lte=500"`
}

// PolicyConfig represents confidence weights and recommendation thresholds
type PolicyConfig struct {
	MinEdge        float64 `mapstructure:"min_edge" validate:"gte=0"`
	MinConfidence  float64 `mapstructure:"min_confidence" validate:"gte=0,lte=100"`
	SpreadWeight   float64 `mapstructure:"spread_weight" validate:"gte=0"`
	AccuracyWeight float64 `mapstructure:"accuracy_weight" validate:"gte=0"`
	SampleHalfLife float64 `mapstructure:"sample_half_life" validate:"gte=0"`
}

// EngineConfig represents request level limits
type EngineConfig struct {
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds" validate:"required,gt=0"`
	BoardConcurrency      int `mapstructure:"board_concurrency" validate:"required,gt=0"`
	BoardMaxProps         int `mapstructure:"board_max_props" validate:"required,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required_if=Enabled true"`
}

// SecretsConfig points at an optional AWS Secrets Manager overlay
type SecretsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Region     string `mapstructure:"region" validate:"required_if=Enabled true"`
	SecretName string `mapstructure:"secret_name" validate:"required_if=Enabled true"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// RequestTimeout returns the end to end prediction deadline
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Engine.RequestTimeoutSeconds) * time.Second
}

// ModelTimeout returns the per-call model deadline
func (c *Config) ModelTimeout() time.Duration {
	return time.Duration(c.Model.TimeoutSeconds) * time.Second
}
