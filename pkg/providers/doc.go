// Package providers implements the completion backends Loom talks to.
//
// # Overview
//
// A Backend turns an assembled prompt, its stop sequences and the resolved
// connection and settings into one outbound HTTP call, and returns the
// provider's JSON response untouched. Backends are looked up by connection
// type in a Registry; unknown types fall back to the generic adapter.
//
// # Architecture
//
//  1. Backend interface - the contract every adapter implements
//  2. HTTPProvider - shared HTTP client logic (connection pooling, retries,
//     timeouts, health tracking)
//  3. Adapters - mancer (hosted) and generic (self-hosted OpenAI-style)
//  4. Registry - connection type to backend lookup
//  5. ModelStops - extra stop tokens for specific models
//
// # Error Handling
//
// A non-2xx response with a JSON body is returned to the caller as is. Every
// other failure is one of the typed errors in this package:
//
//   - ProviderError - non-2xx status or network failure
//   - AuthError - 401/403 responses
//   - RateLimitError - 429 responses, with Retry-After
//   - TimeoutError - client timeout or context cancellation
//   - ParseError - the response body is not JSON
//   - ConfigError - the connection cannot be turned into a request
//
// Use errors.As to inspect them, and ErrorType for a metrics label.
//
// # Retries
//
// No retries are attempted by default. With MaxRetries set, network errors
// and 5xx responses are retried with exponential backoff; 4xx responses
// never are.
//
// # Thread Safety
//
// All types in this package are safe for concurrent use.
package providers
