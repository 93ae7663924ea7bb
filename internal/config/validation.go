package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("modelbackend", validateModelBackend)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	return NewValidator().Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	if err := cv.validator.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	return validateCrossField(cfg)
}

func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func validateModelBackend(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "linear", "http", "grpc":
		return true
	default:
		return false
	}
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	if cfg.Features.Source == "postgres" && !cfg.Database.Enabled {
		return fmt.Errorf("features.source postgres requires database.enabled")
	}

	if cfg.Model.ArtifactSource == "postgres" {
		if !cfg.Database.Enabled {
			return fmt.Errorf("model.artifact_source postgres requires database.enabled")
		}
		if cfg.Model.Backend != "linear" {
			return fmt.Errorf("model.artifact_source postgres requires the linear backend")
		}
	}

	if cfg.Features.PaceSlowThreshold >= cfg.Features.PaceFastThreshold {
		return fmt.Errorf("features.pace_slow_threshold must be below pace_fast_threshold")
	}

	if cfg.Simulation.ModelWeight+cfg.Simulation.FormWeight <= 0 {
		return fmt.Errorf("simulation model_weight and form_weight cannot both be zero")
	}

	if cfg.Policy.SpreadWeight+cfg.Policy.AccuracyWeight <= 0 {
		return fmt.Errorf("policy spread_weight and accuracy_weight cannot both be zero")
	}

	if cfg.Features.RefreshSchedule != "" {
		parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
		if _, err := parser.Parse(cfg.Features.RefreshSchedule); err != nil {
			return fmt.Errorf("invalid features.refresh_schedule: %w", err)
		}
	}

	if cfg.IsProduction() {
		if cfg.Database.Enabled && cfg.Database.SSLMode == "disable" {
			return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
		}
		if cfg.Features.Source == "file" {
			return fmt.Errorf("production environment requires the postgres feature source")
		}
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var b strings.Builder
	for _, fieldError := range validationErrors {
		field := fieldError.Namespace()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required", "required_if":
			fmt.Fprintf(&b, "- Field '%s' is required\n", field)
		case "url":
			fmt.Fprintf(&b, "- Field '%s' must be a valid URL, got '%v'\n", field, value)
		case "min", "max":
			fmt.Fprintf(&b, "- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			fmt.Fprintf(&b, "- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			fmt.Fprintf(&b, "- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			fmt.Fprintf(&b, "- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "modelbackend":
			fmt.Fprintf(&b, "- Field '%s' must be one of: linear, http, grpc\n", field)
		case "oneof":
			fmt.Fprintf(&b, "- Field '%s' has invalid value '%v'\n", field, value)
		default:
			fmt.Fprintf(&b, "- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", b.String())
}
