// Package logging wires slog to the per-request context.
package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// RequestIDKey keys the request id stored in a request context.
type RequestIDKey struct{}

// WithRequestID returns a context carrying the given request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey{}, id)
}

// GetRequestID returns the request id carried by ctx, if any.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// Logger returns the default logger, tagged with the context's request
// id when one is present.
func Logger(ctx context.Context) *slog.Logger {
	logger := slog.Default()
	if id := GetRequestID(ctx); id != "" {
		logger = logger.With("request_id", id)
	}
	return logger
}

// Setup configures the default slog logger with a JSON handler at the given
// level and returns it. Unknown levels fall back to info.
func Setup(level string) *slog.Logger {
	logLevel := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	return logger
}
