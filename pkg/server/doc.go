// Package server provides the Loom HTTP server.
//
// It exposes the completion dispatcher over HTTP and carries the
// operational endpoints: liveness, readiness, build info, backend health
// and Prometheus metrics.
//
// # Basic Usage
//
//	backends := completion.NewRegistry(cfg.Backends)
//	defer backends.Close()
//
//	d := completion.NewDispatcher(st, backends, est,
//	    completion.WithLogger(logger),
//	    completion.WithMetrics(collector),
//	)
//
//	srv := server.New(cfg, d, backends,
//	    server.WithLogger(logger),
//	    server.WithMetrics(collector),
//	    server.WithReadinessCheck("store", storeCheck),
//	)
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Start blocks until ctx is cancelled or Shutdown is called, then drains
// in-flight requests for up to server.shutdown_timeout.
//
// # Routes
//
//   - POST /completions - Assemble and dispatch by connection type
//   - POST /completions/mancer - Assemble and dispatch to the hosted backend
//   - POST /prompt - Assemble only; returns prompt, stop sequences and budget
//   - GET /health - Liveness check (always 200)
//   - GET /ready - Readiness check (runs registered checks)
//   - GET /version - Build information
//   - GET /health/backends - Request-outcome health per backend
//   - GET /metrics - Prometheus scrape endpoint (path configurable)
//
// Completion routes answer 200 with the backend's JSON body, or with JSON
// null when the completion failed. The failure itself is in the logs,
// keyed by request id.
//
// # Middleware Chain
//
// Requests pass through, outermost first: Recovery, RequestID, Logging,
// CORS, Tracing and Metrics. See package middleware.
package server
