package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

// ContextWithLogger stores a logger in the context.
func ContextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the logger carried by ctx.
// Falls back to fallback, or zap.NewNop() when fallback is nil.
func FromContext(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && l != nil {
		return l
	}
	if fallback != nil {
		return fallback
	}
	return zap.NewNop()
}

// WithPass returns a context whose logger is tagged with the curation pass id.
func WithPass(ctx context.Context, base *zap.Logger, passID string) context.Context {
	return ContextWithLogger(ctx, FromContext(ctx, base).With(zap.String("pass_id", passID)))
}
