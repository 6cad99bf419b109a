package config

import "time"

// Config is the root configuration structure for Loom.
// It contains the HTTP server, record store, completion backends, token
// estimation and telemetry sections.
type Config struct {
	// Server contains HTTP server configuration including listen address
	// and timeouts.
	Server ServerConfig `yaml:"server"`

	// Store selects and configures the backend holding characters,
	// connections, settings and the default ids.
	Store StoreConfig `yaml:"store"`

	// Backends contains the shared HTTP client settings for completion
	// backends and per-backend overrides.
	Backends BackendsConfig `yaml:"backends"`

	// Processing contains prompt processing configuration such as token
	// estimation.
	Processing ProcessingConfig `yaml:"processing"`

	// Secrets configures resolution of ${secret:name} connection keys.
	Secrets SecretsConfig `yaml:"secrets"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:3003").
	// Default: "127.0.0.1:3003"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. Completions can be slow, so keep this above the backend
	// timeout. A zero value means no timeout.
	// Default: 0
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits request header size.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// MaxBodyBytes limits the size of an inbound completion request.
	// Chat logs can be long; the default allows 16MB.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// CORS configures cross-origin access for browser chat frontends.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	// Enabled controls whether CORS headers are sent.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins lists allowed origins. Use ["*"] to allow all.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods lists methods allowed in preflight responses.
	// Default: ["GET", "POST", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders lists request headers allowed in preflight responses.
	// Default: ["Content-Type", "X-Request-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// ExposedHeaders lists response headers visible to the browser.
	// Default: ["X-Request-ID"]
	ExposedHeaders []string `yaml:"exposed_headers"`

	// MaxAge is the preflight cache lifetime in seconds.
	// Default: 3600
	MaxAge int `yaml:"max_age"`

	// AllowCredentials allows cookies and auth headers cross-origin.
	// Default: false
	AllowCredentials bool `yaml:"allow_credentials"`
}

// StoreConfig selects the record store.
type StoreConfig struct {
	// Backend is one of "memory", "file" or "sqlite".
	// Default: "file"
	Backend string `yaml:"backend"`

	// File configures the YAML/TOML records file backend.
	File FileStoreConfig `yaml:"file"`

	// SQLite configures the SQLite backend.
	SQLite SQLiteStoreConfig `yaml:"sqlite"`
}

// FileStoreConfig configures the records file backend.
type FileStoreConfig struct {
	// Path is the records file. The extension selects the format:
	// .yaml/.yml or .toml.
	// Default: "./records.yaml"
	Path string `yaml:"path"`

	// Watch reloads the file when it changes on disk.
	// Default: false
	Watch bool `yaml:"watch"`

	// DebounceInterval is the quiet period before a reload fires.
	// Default: 100ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`
}

// SQLiteStoreConfig configures the SQLite backend.
type SQLiteStoreConfig struct {
	// Path is the database file.
	// Default: "data/loom.db"
	Path string `yaml:"path"`

	// Driver is the database/sql driver name: "sqlite" (pure Go) or
	// "sqlite3" (cgo).
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// BusyTimeout is how long to wait for locks.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// BackendsConfig contains the HTTP client settings shared by completion
// backends.
type BackendsConfig struct {
	// Timeout bounds one completion call. Zero means no client timeout; the
	// caller's context still applies.
	// Default: 0
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the number of retries for transient failures.
	// Default: 0
	MaxRetries int `yaml:"max_retries"`

	// MaxIdleConns is the maximum number of idle connections in the pool.
	// Default: 100
	MaxIdleConns int `yaml:"max_idle_conns"`

	// MaxIdleConnsPerHost is the maximum idle connections per host.
	// Default: 10
	MaxIdleConnsPerHost int `yaml:"max_idle_conns_per_host"`

	// IdleConnTimeout is how long an idle connection stays pooled.
	// Default: 90s
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`

	// Mancer configures the hosted Mancer backend.
	Mancer MancerConfig `yaml:"mancer"`
}

// MancerConfig configures the hosted Mancer backend.
type MancerConfig struct {
	// BaseURL is the completion endpoint.
	// Default: "https://neuro.mancer.tech/oai/v1/completions"
	BaseURL string `yaml:"base_url"`
}

// SecretsConfig configures where connection key references are resolved.
type SecretsConfig struct {
	// EnvPrefix prefixes secret environment variables.
	// Default: "LOOM_SECRET_"
	EnvPrefix string `yaml:"env_prefix"`

	// Dir is a directory holding one secret per file. Empty disables the
	// file provider.
	// Default: ""
	Dir string `yaml:"dir"`

	// CacheTTL is how long resolved secrets are reused. Zero disables
	// caching.
	// Default: 5m
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// ProcessingConfig contains prompt processing configuration.
type ProcessingConfig struct {
	// Tokens contains token estimation configuration.
	Tokens TokensConfig `yaml:"tokens"`

	// CleanPlatformMarkup strips chat-platform emoji, mention, channel and
	// role markup from message text before fitting.
	// Default: false
	CleanPlatformMarkup bool `yaml:"clean_platform_markup"`
}

// TokensConfig contains token estimation configuration.
type TokensConfig struct {
	// Estimator is the token estimator type (simple, tiktoken).
	// Default: "simple"
	Estimator string `yaml:"estimator"`

	// CharsPerToken is the default ratio for the simple estimator.
	// Default: 4.0
	CharsPerToken float64 `yaml:"chars_per_token"`

	// Models contains model-specific characters-per-token ratios.
	// Keys match a model name exactly or as a prefix.
	Models map[string]float64 `yaml:"models"`

	// Encoding is the BPE encoding used by the tiktoken estimator.
	// Default: "cl100k_base"
	Encoding string `yaml:"encoding"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactSecrets masks bearer tokens and API keys in log attributes.
	// Default: true
	RedactSecrets *bool `yaml:"redact_secrets"`

	// RedactPatterns contains additional redaction patterns.
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`
}

// RedactPattern defines a custom redaction pattern.
type RedactPattern struct {
	// Name is a descriptive name for the pattern.
	Name string `yaml:"name"`

	// Pattern is the regular expression to match.
	Pattern string `yaml:"pattern"`

	// Replacement is the string to replace matches with.
	Replacement string `yaml:"replacement"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the Prometheus metric namespace.
	// Default: "loom"
	Namespace string `yaml:"namespace"`

	// Subsystem is the Prometheus metric subsystem.
	// Default: ""
	Subsystem string `yaml:"subsystem"`
}

// TracingConfig contains OpenTelemetry tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are recorded and exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler is the sampling strategy for root spans.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces sampled by the "ratio" sampler.
	// Default: 0.1
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector address.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS to the collector.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout bounds each export.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// ServiceName is the service.name resource attribute.
	// Default: "loom"
	ServiceName string `yaml:"service_name"`
}

// MetricsEnabled reports whether metrics are on, honoring the default.
func (c MetricsConfig) MetricsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// RedactionEnabled reports whether secret redaction is on, honoring the
// default.
func (c LoggingConfig) RedactionEnabled() bool {
	return c.RedactSecrets == nil || *c.RedactSecrets
}
