package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:3003"
	DefaultReadTimeout     = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576  // 1MB
	DefaultMaxBodyBytes    = 16 << 20 // 16MB
	DefaultCORSMaxAge      = 3600

	// Store defaults
	DefaultStoreBackend       = "file"
	DefaultStoreFilePath      = "./records.yaml"
	DefaultStoreFileDebounce  = 100 * time.Millisecond
	DefaultStoreSQLitePath    = "data/loom.db"
	DefaultStoreSQLiteDriver  = "sqlite"
	DefaultStoreSQLiteTimeout = 5 * time.Second

	// Backend defaults
	DefaultBackendMaxIdleConns        = 100
	DefaultBackendMaxIdleConnsPerHost = 10
	DefaultBackendIdleConnTimeout     = 90 * time.Second
	DefaultMancerBaseURL              = "https://neuro.mancer.tech/oai/v1/completions"

	// Processing defaults
	DefaultTokensEstimator     = "simple"
	DefaultTokensCharsPerToken = 4.0
	DefaultTokensEncoding      = "cl100k_base"

	// Secrets defaults
	DefaultSecretsEnvPrefix = "LOOM_SECRET_"
	DefaultSecretsCacheTTL  = 5 * time.Minute

	// Telemetry defaults
	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "json"
	DefaultPrometheusPath   = "/metrics"
	DefaultMetricsNamespace = "loom"
	DefaultTracingSampler   = "ratio"
	DefaultTracingRatio     = 0.1
	DefaultTracingEndpoint  = "localhost:4317"
	DefaultTracingTimeout   = 10 * time.Second
	DefaultTracingService   = "loom"
)

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}

	if cfg.Server.CORS.Enabled {
		cors := &cfg.Server.CORS
		if len(cors.AllowedOrigins) == 0 {
			cors.AllowedOrigins = []string{"*"}
		}
		if len(cors.AllowedMethods) == 0 {
			cors.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
		}
		if len(cors.AllowedHeaders) == 0 {
			cors.AllowedHeaders = []string{"Content-Type", "X-Request-ID"}
		}
		if len(cors.ExposedHeaders) == 0 {
			cors.ExposedHeaders = []string{"X-Request-ID"}
		}
		if cors.MaxAge == 0 {
			cors.MaxAge = DefaultCORSMaxAge
		}
	}

	// Store defaults
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = DefaultStoreBackend
	}
	if cfg.Store.File.Path == "" {
		cfg.Store.File.Path = DefaultStoreFilePath
	}
	if cfg.Store.File.DebounceInterval == 0 {
		cfg.Store.File.DebounceInterval = DefaultStoreFileDebounce
	}
	if cfg.Store.SQLite.Path == "" {
		cfg.Store.SQLite.Path = DefaultStoreSQLitePath
	}
	if cfg.Store.SQLite.Driver == "" {
		cfg.Store.SQLite.Driver = DefaultStoreSQLiteDriver
	}
	if cfg.Store.SQLite.BusyTimeout == 0 {
		cfg.Store.SQLite.BusyTimeout = DefaultStoreSQLiteTimeout
	}

	// Backend defaults
	if cfg.Backends.MaxIdleConns == 0 {
		cfg.Backends.MaxIdleConns = DefaultBackendMaxIdleConns
	}
	if cfg.Backends.MaxIdleConnsPerHost == 0 {
		cfg.Backends.MaxIdleConnsPerHost = DefaultBackendMaxIdleConnsPerHost
	}
	if cfg.Backends.IdleConnTimeout == 0 {
		cfg.Backends.IdleConnTimeout = DefaultBackendIdleConnTimeout
	}
	if cfg.Backends.Mancer.BaseURL == "" {
		cfg.Backends.Mancer.BaseURL = DefaultMancerBaseURL
	}

	// Processing defaults
	if cfg.Processing.Tokens.Estimator == "" {
		cfg.Processing.Tokens.Estimator = DefaultTokensEstimator
	}
	if cfg.Processing.Tokens.CharsPerToken == 0 {
		cfg.Processing.Tokens.CharsPerToken = DefaultTokensCharsPerToken
	}
	if cfg.Processing.Tokens.Encoding == "" {
		cfg.Processing.Tokens.Encoding = DefaultTokensEncoding
	}

	// Secrets defaults
	if cfg.Secrets.EnvPrefix == "" {
		cfg.Secrets.EnvPrefix = DefaultSecretsEnvPrefix
	}
	if cfg.Secrets.CacheTTL == 0 {
		cfg.Secrets.CacheTTL = DefaultSecretsCacheTTL
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultPrometheusPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingRatio
	}
	if cfg.Telemetry.Tracing.Endpoint == "" {
		cfg.Telemetry.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Telemetry.Tracing.Timeout == 0 {
		cfg.Telemetry.Tracing.Timeout = DefaultTracingTimeout
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingService
	}
}

// Default returns a configuration with every default applied. It is used
// when no configuration file is present.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
