package logging

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// RequestIDKey is the attribute key for request ids.
const RequestIDKey = "request_id"

// WithRequestID stores a request id in ctx.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKey{}, requestID)
}

// GetRequestID returns the request id stored in ctx, or "".
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(contextKey{}).(string); ok {
		return id
	}
	return ""
}

// FromContext returns logger (slog.Default when nil) with the request id
// in ctx attached. Use it for loggers built from other handlers, which do
// not pick the id up on their own.
func FromContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	if id := GetRequestID(ctx); id != "" {
		return logger.With(RequestIDKey, id)
	}
	return logger
}
