// Package health serves liveness, readiness and version endpoints.
//
// Readiness runs every registered CheckFunc concurrently, each under its own
// timeout, and reports "degraded" with 503 when any of them fails. Loom
// registers a store check that reads the default ids.
package health
