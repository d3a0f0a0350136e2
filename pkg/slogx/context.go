package slogx

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// WithContext binds a logger to the context so downstream code logs with the
// caller's attributes attached.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the context-bound logger, falling back to
// slog.Default() when none was bound.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := loggerFrom(ctx); ok {
		return l
	}
	return slog.Default()
}

// WithRequestID rebinds the context logger with the request correlation ID
// attached, so every log line emitted on behalf of the request carries it.
func WithRequestID(ctx context.Context, reqID string) context.Context {
	return WithContext(ctx, FromContext(ctx).With("req_id", reqID))
}

func loggerFrom(ctx context.Context) (*slog.Logger, bool) {
	l, ok := ctx.Value(ctxKey{}).(*slog.Logger)
	return l, ok
}
