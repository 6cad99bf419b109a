// Package middleware provides the HTTP middleware chain for the Loom server.
//
// The server applies, outermost first:
//
//	Recovery  turns handler panics into a JSON 500
//	RequestID assigns X-Request-ID and stores it in the context for logging
//	Logging   logs one line per request with status and latency
//	CORS      answers preflight requests for browser frontends
//	Tracing   starts a server span joined to any W3C trace context
//	Metrics   counts requests per route pattern
//
// Metrics wraps the mux directly, with Tracing just outside it, so both can
// read the matched route pattern after the mux has set it on the request.
package middleware
