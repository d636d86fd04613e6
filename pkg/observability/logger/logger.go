package logger

import "context"

// Logger is the structured logging contract used across the service.
// Every method takes a message followed by alternating key-value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	// With returns a child logger whose entries carry the given
	// key-value pairs in addition to the parent's.
	With(args ...any) Logger

	// WithContext returns a child logger annotated with the request id
	// carried by ctx, when present.
	WithContext(ctx context.Context) Logger
}

// requestIDKey matches the context key set by the API request-id middleware.
type requestIDKey struct{}

// ContextWithRequestID stores a request id on the context for WithContext.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext extracts the request id, empty when absent.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}
