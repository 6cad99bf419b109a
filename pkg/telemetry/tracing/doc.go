// Package tracing provides OpenTelemetry tracing for Loom.
//
// A Tracer records spans for inbound HTTP requests, prompt preparation and
// backend dispatch, and exports them over OTLP gRPC. W3C trace context is
// read from inbound requests so a chat frontend can join its own traces to
// Loom's.
//
// # Configuration
//
//	telemetry:
//	  tracing:
//	    enabled: true
//	    sampler: ratio
//	    sample_ratio: 0.1
//	    endpoint: "localhost:4317"
//	    insecure: true
//
// # Sampling
//
// The sampler applies to root spans only. Child spans follow their parent's
// decision, so a trace is either recorded whole or not at all.
//
// # Disabled tracing
//
// New returns a nil *Tracer when tracing is disabled. Every method is safe
// on a nil receiver and hands out non-recording spans, so callers never
// branch on whether tracing is on.
package tracing
