// Package telemetry groups Loom's observability packages:
//
//   - logging: slog logger construction with secret redaction and request ids
//   - metrics: Prometheus collector and scrape handler
//   - health: liveness, readiness and version endpoints
//   - tracing: OpenTelemetry spans exported over OTLP
package telemetry
