// Package config provides configuration management for Loom.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("loom.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("loom.yaml", true)
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention LOOM_SECTION_FIELD.
// For example:
//
//   - LOOM_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - LOOM_STORE_BACKEND overrides store.backend
//   - LOOM_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// There is no process-wide configuration. The loaded *Config is passed to
// the components that need it.
package config
