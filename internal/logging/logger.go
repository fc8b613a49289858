// Package logging is the structured logger used by every budgetkeeper
// component. Servers and services depend on the Logger interface; New builds
// the slog JSON implementation configured by the log level setting.
package logging

import "context"

// Logger writes leveled records with key/value attributes:
//
//	log.Warn(ctx, "request rejected", "path", path, "status", 409)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	// Error is used for 5xx responses and failed background work.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that adds args to every record, such as
	// "module", "http_server".
	With(args ...any) Logger
}
