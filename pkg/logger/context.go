package logger

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// With binds a child logger carrying fields to the context, so everything
// logged downstream of a request keeps its trace id.
func With(ctx context.Context, fields ...any) context.Context {
	return context.WithValue(ctx, ctxKey{}, From(ctx).With(fields...))
}

// From returns the context-bound logger, or the shared one if none is bound.
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return LoggerWrapper()
}
