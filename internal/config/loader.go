package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix         = "SHARPEYE"
	defaultConfigPath = "config/config.yaml"
)

// Load reads and parses the configuration from file and environment variables.
// It expands environment variable placeholders in the YAML file (${VAR_NAME}).
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return unmarshal(v)
}

// LoadWithDefaults loads configuration with default values for every field,
// so the service can start from environment variables alone.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "sharpeye")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("server.read_timeout_seconds", 10)
	v.SetDefault("server.write_timeout_seconds", 15)
	v.SetDefault("server.rate_limit_per_second", 20.0)
	v.SetDefault("server.rate_limit_burst", 40)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.query_timeout_seconds", 30)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.ttl_seconds", 300)

	v.SetDefault("features.source", "file")
	v.SetDefault("features.snapshot_file", "data/game_logs.json")
	v.SetDefault("features.min_games", 5)
	v.SetDefault("features.lookback_days", 400)
	v.SetDefault("features.defense_baseline", 55.0)
	v.SetDefault("features.defense_band", 5.0)
	v.SetDefault("features.pace_fast_threshold", 102.0)
	v.SetDefault("features.pace_slow_threshold", 98.0)
	v.SetDefault("features.refresh_schedule", "0 0 6 * * *")
	v.SetDefault("features.load_timeout_seconds", 60)

	v.SetDefault("model.backend", "linear")
	v.SetDefault("model.artifact_source", "file")
	v.SetDefault("model.artifact_path", "models/points_model.json")
	v.SetDefault("model.artifact_name", "player_points")
	v.SetDefault("model.timeout_seconds", 2)
	v.SetDefault("model.retry_attempts", 2)
	v.SetDefault("model.rate_limit_per_second", 50.0)
	v.SetDefault("model.cache_enabled", true)
	v.SetDefault("model.cache_ttl_seconds", 300)

	v.SetDefault("simulation.sample_count", 10000)
	v.SetDefault("simulation.workers", 0)
	v.SetDefault("simulation.chunk_size", 1000)
	v.SetDefault("simulation.model_weight", 0.5)
	v.SetDefault("simulation.form_weight", 0.5)
	v.SetDefault("simulation.min_spread", 0.5)
	v.SetDefault("simulation.histogram_bins", 50)

	v.SetDefault("policy.min_edge", 3.0)
	v.SetDefault("policy.min_confidence", 55.0)
	v.SetDefault("policy.spread_weight", 0.7)
	v.SetDefault("policy.accuracy_weight", 0.3)
	v.SetDefault("policy.sample_half_life", 100.0)

	v.SetDefault("engine.request_timeout_seconds", 5)
	v.SetDefault("engine.board_concurrency", 4)
	v.SetDefault("engine.board_max_props", 200)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}
