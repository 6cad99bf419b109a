package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use LoadConfigWithEnvOverrides
// for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention LOOM_SECTION_FIELD (e.g., LOOM_SERVER_LISTEN_ADDRESS).
// Environment variables always take precedence over file-based configuration.
//
// A missing file is not an error when allowMissing is set: the defaults are
// used instead, so the service can start from environment variables alone.
func LoadConfigWithEnvOverrides(path string, allowMissing bool) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		if !allowMissing || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		cfg = Default()
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	if val := os.Getenv("LOOM_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	envDuration("LOOM_SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	envDuration("LOOM_SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	envDuration("LOOM_SERVER_IDLE_TIMEOUT", &cfg.Server.IdleTimeout)

	// Store overrides
	if val := os.Getenv("LOOM_STORE_BACKEND"); val != "" {
		cfg.Store.Backend = val
	}
	if val := os.Getenv("LOOM_STORE_FILE_PATH"); val != "" {
		cfg.Store.File.Path = val
	}
	if val := os.Getenv("LOOM_STORE_FILE_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Store.File.Watch = b
		}
	}
	if val := os.Getenv("LOOM_STORE_SQLITE_PATH"); val != "" {
		cfg.Store.SQLite.Path = val
	}
	if val := os.Getenv("LOOM_STORE_SQLITE_DRIVER"); val != "" {
		cfg.Store.SQLite.Driver = val
	}

	// Backend overrides
	envDuration("LOOM_BACKENDS_TIMEOUT", &cfg.Backends.Timeout)
	if val := os.Getenv("LOOM_BACKENDS_MAX_RETRIES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Backends.MaxRetries = i
		}
	}
	if val := os.Getenv("LOOM_BACKENDS_MANCER_BASE_URL"); val != "" {
		cfg.Backends.Mancer.BaseURL = val
	}

	// Processing overrides
	if val := os.Getenv("LOOM_PROCESSING_TOKENS_ESTIMATOR"); val != "" {
		cfg.Processing.Tokens.Estimator = val
	}
	if val := os.Getenv("LOOM_PROCESSING_TOKENS_CHARS_PER_TOKEN"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Processing.Tokens.CharsPerToken = f
		}
	}

	// Secrets overrides
	if val := os.Getenv("LOOM_SECRETS_DIR"); val != "" {
		cfg.Secrets.Dir = val
	}
	envDuration("LOOM_SECRETS_CACHE_TTL", &cfg.Secrets.CacheTTL)

	// Telemetry overrides
	if val := os.Getenv("LOOM_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("LOOM_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("LOOM_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = &b
		}
	}
	if val := os.Getenv("LOOM_TELEMETRY_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}
	if val := os.Getenv("LOOM_TELEMETRY_TRACING_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Tracing.Enabled = b
		}
	}
	if val := os.Getenv("LOOM_TELEMETRY_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}
}

// envDuration overwrites dst when the named variable holds a valid duration.
func envDuration(name string, dst *time.Duration) {
	val := os.Getenv(name)
	if val == "" {
		return
	}
	if d, err := time.ParseDuration(val); err == nil {
		*dst = d
	}
}
