package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "loom.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: "0.0.0.0:9000"
store:
  backend: sqlite
  sqlite:
    driver: sqlite3
processing:
  tokens:
    estimator: simple
    models:
      mythomax: 3.5
telemetry:
  logging:
    level: debug
    format: text
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:9000" {
		t.Errorf("ListenAddress = %q", cfg.Server.ListenAddress)
	}
	if cfg.Store.Backend != "sqlite" || cfg.Store.SQLite.Driver != "sqlite3" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Store.SQLite.Path != DefaultStoreSQLitePath {
		t.Errorf("sqlite path default not applied: %q", cfg.Store.SQLite.Path)
	}
	if cfg.Processing.Tokens.Models["mythomax"] != 3.5 {
		t.Errorf("model ratio = %v", cfg.Processing.Tokens.Models["mythomax"])
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("level = %q", cfg.Telemetry.Logging.Level)
	}
	if cfg.Backends.MaxRetries != 0 {
		t.Errorf("MaxRetries = %d, want 0", cfg.Backends.MaxRetries)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected ErrNotExist, got %v", err)
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeConfig(t, "server: [unclosed")
		if _, err := LoadConfig(path); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("invalid values", func(t *testing.T) {
		path := writeConfig(t, "store:\n  backend: redis\n")
		_, err := LoadConfig(path)
		var verr ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if verr.Errors[0].Field != "store.backend" {
			t.Errorf("field = %q", verr.Errors[0].Field)
		}
	})
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, "server:\n  listen_address: \"127.0.0.1:1\"\n")

	t.Setenv("LOOM_SERVER_LISTEN_ADDRESS", "127.0.0.1:4000")
	t.Setenv("LOOM_BACKENDS_TIMEOUT", "45s")
	t.Setenv("LOOM_STORE_BACKEND", "memory")
	t.Setenv("LOOM_TELEMETRY_METRICS_ENABLED", "false")
	t.Setenv("LOOM_BACKENDS_MAX_RETRIES", "not-a-number")
	t.Setenv("LOOM_SECRETS_DIR", "/run/secrets")

	cfg, err := LoadConfigWithEnvOverrides(path, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.ListenAddress != "127.0.0.1:4000" {
		t.Errorf("ListenAddress = %q", cfg.Server.ListenAddress)
	}
	if cfg.Backends.Timeout != 45*time.Second {
		t.Errorf("Timeout = %v", cfg.Backends.Timeout)
	}
	if cfg.Store.Backend != "memory" {
		t.Errorf("Backend = %q", cfg.Store.Backend)
	}
	if cfg.Telemetry.Metrics.MetricsEnabled() {
		t.Error("metrics should be disabled")
	}
	if cfg.Backends.MaxRetries != 0 {
		t.Errorf("unparseable override should be ignored, got %d", cfg.Backends.MaxRetries)
	}
	if cfg.Secrets.Dir != "/run/secrets" || cfg.Secrets.EnvPrefix != DefaultSecretsEnvPrefix {
		t.Errorf("Secrets = %+v", cfg.Secrets)
	}
}

func TestLoadConfigWithEnvOverrides_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.yaml")

	if _, err := LoadConfigWithEnvOverrides(missing, false); err == nil {
		t.Error("expected error when missing file is not allowed")
	}

	t.Setenv("LOOM_TELEMETRY_LOGGING_LEVEL", "warn")
	cfg, err := LoadConfigWithEnvOverrides(missing, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("level = %q", cfg.Telemetry.Logging.Level)
	}
	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("ListenAddress = %q", cfg.Server.ListenAddress)
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	cfg := Default()
	before := *cfg
	ApplyDefaults(cfg)

	if !reflect.DeepEqual(cfg.Server, before.Server) || cfg.Store != before.Store {
		t.Error("ApplyDefaults changed an already-defaulted config")
	}
	if !cfg.Telemetry.Metrics.MetricsEnabled() || !cfg.Telemetry.Logging.RedactionEnabled() {
		t.Error("metrics and redaction should default to enabled")
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty listen address", func(c *Config) { c.Server.ListenAddress = "" }, "server.listen_address"},
		{"negative read timeout", func(c *Config) { c.Server.ReadTimeout = -time.Second }, "server.read_timeout"},
		{"unknown store", func(c *Config) { c.Store.Backend = "redis" }, "store.backend"},
		{"bad sqlite driver", func(c *Config) {
			c.Store.Backend = "sqlite"
			c.Store.SQLite.Driver = "postgres"
		}, "store.sqlite.driver"},
		{"empty file path", func(c *Config) { c.Store.File.Path = "" }, "store.file.path"},
		{"negative retries", func(c *Config) { c.Backends.MaxRetries = -1 }, "backends.max_retries"},
		{"relative mancer url", func(c *Config) { c.Backends.Mancer.BaseURL = "neuro/oai" }, "backends.mancer.base_url"},
		{"unknown estimator", func(c *Config) { c.Processing.Tokens.Estimator = "exact" }, "processing.tokens.estimator"},
		{"zero ratio", func(c *Config) { c.Processing.Tokens.CharsPerToken = 0 }, "processing.tokens.chars_per_token"},
		{"bad model ratio", func(c *Config) { c.Processing.Tokens.Models = map[string]float64{"m": -1} }, "processing.tokens.models.m"},
		{"unknown sampler", func(c *Config) { c.Telemetry.Tracing.Sampler = "sometimes" }, "telemetry.tracing.sampler"},
		{"sample ratio above one", func(c *Config) { c.Telemetry.Tracing.SampleRatio = 1.5 }, "telemetry.tracing.sample_ratio"},
		{"negative secret cache ttl", func(c *Config) { c.Secrets.CacheTTL = -time.Second }, "secrets.cache_ttl"},
		{"bad level", func(c *Config) { c.Telemetry.Logging.Level = "verbose" }, "telemetry.logging.level"},
		{"bad format", func(c *Config) { c.Telemetry.Logging.Format = "xml" }, "telemetry.logging.format"},
		{"bad pattern", func(c *Config) {
			c.Telemetry.Logging.RedactPatterns = []RedactPattern{{Name: "x", Pattern: "("}}
		}, "telemetry.logging.redact_patterns[0]"},
		{"credentials with wildcard", func(c *Config) {
			c.Server.CORS = CORSConfig{Enabled: true, AllowedOrigins: []string{"*"}, AllowCredentials: true}
		}, "server.cors.allow_credentials"},
		{"relative metrics path", func(c *Config) { c.Telemetry.Metrics.Path = "metrics" }, "telemetry.metrics.path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on %s, got %v", tt.field, verr)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	single := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}}}
	if single.Error() != "configuration validation failed: a: bad" {
		t.Errorf("single = %q", single.Error())
	}

	multi := ValidationError{Errors: []FieldError{{Field: "a", Message: "x"}, {Field: "b", Message: "y"}}}
	if !strings.Contains(multi.Error(), "2 errors") {
		t.Errorf("multi = %q", multi.Error())
	}
}

func TestApplyDefaults_CORS(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.CORS.AllowedOrigins != nil {
		t.Error("disabled CORS should not be filled in")
	}

	cfg = &Config{Server: ServerConfig{CORS: CORSConfig{Enabled: true, AllowedOrigins: []string{"https://chat.example"}}}}
	ApplyDefaults(cfg)
	cors := cfg.Server.CORS
	if len(cors.AllowedOrigins) != 1 || cors.AllowedOrigins[0] != "https://chat.example" {
		t.Errorf("AllowedOrigins overwritten: %v", cors.AllowedOrigins)
	}
	if cors.MaxAge != DefaultCORSMaxAge || len(cors.AllowedMethods) == 0 || len(cors.ExposedHeaders) == 0 {
		t.Errorf("CORS defaults not applied: %+v", cors)
	}
}
