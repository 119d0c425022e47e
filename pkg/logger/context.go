package logger

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// With stores a logger annotated with fields in the context. Middleware uses
// it to build up request-scoped loggers (trace ID, acting user) as the request
// moves through the stack.
func With(ctx context.Context, fields ...any) context.Context {
	return context.WithValue(ctx, ctxKey{}, From(ctx).With(fields...))
}

// WithActor annotates the request-scoped logger with the authenticated user,
// so every line logged below the auth middleware carries the actor.
func WithActor(ctx context.Context, userID int64) context.Context {
	return With(ctx, "actor_id", userID)
}

// From returns the request-scoped logger, falling back to the process logger.
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return LoggerWrapper()
}
