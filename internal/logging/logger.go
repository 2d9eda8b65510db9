// Package logging defines the structured-logging interface used by the
// registration server. The only implementation wraps log/slog.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "ceremony started", "ceremony_id", id)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)

	// Warn is used for client-caused failures (bad input, expired ceremony).
	Warn(ctx context.Context, msg string, args ...any)

	// Error is used for infrastructure faults; include the full cause.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}
