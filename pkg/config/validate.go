package config

import (
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateStore(&cfg.Store)...)
	errs = append(errs, validateBackends(&cfg.Backends)...)
	errs = append(errs, validateProcessing(&cfg.Processing)...)
	errs = append(errs, validateSecrets(&cfg.Secrets)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateServer validates server configuration.
func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	}

	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.read_timeout",
			Message: "read timeout must be positive",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.write_timeout",
			Message: "write timeout must be non-negative",
		})
	}
	if cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.idle_timeout",
			Message: "idle timeout must be positive",
		})
	}
	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes must be non-negative",
		})
	}
	if cfg.MaxBodyBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_body_bytes",
			Message: "max body bytes must be non-negative",
		})
	}

	if cfg.CORS.MaxAge < 0 {
		errs = append(errs, FieldError{
			Field:   "server.cors.max_age",
			Message: "max age must be non-negative",
		})
	}
	if cfg.CORS.AllowCredentials && slices.Contains(cfg.CORS.AllowedOrigins, "*") {
		errs = append(errs, FieldError{
			Field:   "server.cors.allow_credentials",
			Message: "credentials cannot be allowed for wildcard origins",
		})
	}

	return errs
}

// validateStore validates record store configuration.
func validateStore(cfg *StoreConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "memory":
	case "file":
		if cfg.File.Path == "" {
			errs = append(errs, FieldError{
				Field:   "store.file.path",
				Message: "file path is required when backend is 'file'",
			})
		}
	case "sqlite":
		if cfg.SQLite.Path == "" {
			errs = append(errs, FieldError{
				Field:   "store.sqlite.path",
				Message: "database path is required when backend is 'sqlite'",
			})
		}
		if cfg.SQLite.Driver != "sqlite" && cfg.SQLite.Driver != "sqlite3" {
			errs = append(errs, FieldError{
				Field:   "store.sqlite.driver",
				Message: fmt.Sprintf("invalid driver %q: must be 'sqlite' or 'sqlite3'", cfg.SQLite.Driver),
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "store.backend",
			Message: fmt.Sprintf("invalid backend %q: must be 'memory', 'file' or 'sqlite'", cfg.Backend),
		})
	}

	return errs
}

// validateBackends validates completion backend client settings.
func validateBackends(cfg *BackendsConfig) []FieldError {
	var errs []FieldError

	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "backends.timeout",
			Message: "timeout must be non-negative",
		})
	}
	if cfg.MaxRetries < 0 {
		errs = append(errs, FieldError{
			Field:   "backends.max_retries",
			Message: "max retries must be non-negative",
		})
	}
	if cfg.MaxRetries > 10 {
		errs = append(errs, FieldError{
			Field:   "backends.max_retries",
			Message: "max retries exceeds reasonable limit (10)",
		})
	}

	if cfg.Mancer.BaseURL != "" {
		u, err := url.Parse(cfg.Mancer.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, FieldError{
				Field:   "backends.mancer.base_url",
				Message: "base URL must be an absolute URL",
			})
		}
	}

	return errs
}

// validateProcessing validates token estimation configuration.
func validateProcessing(cfg *ProcessingConfig) []FieldError {
	var errs []FieldError

	switch cfg.Tokens.Estimator {
	case "simple", "tiktoken":
	default:
		errs = append(errs, FieldError{
			Field:   "processing.tokens.estimator",
			Message: fmt.Sprintf("invalid estimator %q: must be 'simple' or 'tiktoken'", cfg.Tokens.Estimator),
		})
	}

	if cfg.Tokens.CharsPerToken <= 0 {
		errs = append(errs, FieldError{
			Field:   "processing.tokens.chars_per_token",
			Message: "chars per token must be positive",
		})
	}
	for model, ratio := range cfg.Tokens.Models {
		if ratio <= 0 {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("processing.tokens.models.%s", model),
				Message: "chars per token must be positive",
			})
		}
	}

	return errs
}

// validateSecrets validates secret resolution configuration.
func validateSecrets(cfg *SecretsConfig) []FieldError {
	var errs []FieldError

	if cfg.CacheTTL < 0 {
		errs = append(errs, FieldError{
			Field:   "secrets.cache_ttl",
			Message: "cache TTL must be non-negative",
		})
	}

	return errs
}

// validateTelemetry validates logging and metrics configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid level %q: must be debug, info, warn or error", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[strings.ToLower(cfg.Logging.Format)] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid format %q: must be json or text", cfg.Logging.Format),
		})
	}

	for i, p := range cfg.Logging.RedactPatterns {
		if _, err := regexp.Compile(p.Pattern); err != nil {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("telemetry.logging.redact_patterns[%d]", i),
				Message: fmt.Sprintf("invalid pattern: %v", err),
			})
		}
	}

	if cfg.Metrics.MetricsEnabled() && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with '/'",
		})
	}

	switch cfg.Tracing.Sampler {
	case "always", "never", "ratio":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sampler",
			Message: fmt.Sprintf("invalid sampler %q: must be always, never or ratio", cfg.Tracing.Sampler),
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}
	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "endpoint is required when tracing is enabled",
		})
	}

	return errs
}
