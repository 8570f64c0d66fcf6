// Package ctxlog carries a slog.Logger through context.Context so every
// layer (scheduler ticks, command bodies, handler decode paths) logs to the
// app's configured logger without plumbing it explicitly.
package ctxlog

import (
	"context"
	"log/slog"
)

// key is unexported to keep this context key collision-free.
type key struct{}

var loggerKey = key{}

// WithLogger returns a child context carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger from ctx, falling back to the process
// default logger when none was attached. Command bodies run under contexts
// the scheduler builds, so the fallback only triggers in tests or direct
// library use.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
