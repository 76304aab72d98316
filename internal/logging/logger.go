// Package logging is the structured logger handed to every salesdash
// component. cmd/server builds one SlogLogger and passes it down; components
// derive their own with With("component", ...).
package logging

import "context"

// Logger takes a message plus alternating key/value attributes:
//
//	log.Warn(ctx, "summary cache read failed", "error", err)
//
// HTTP handlers pass c.UserContext() so request-scoped cancellation follows
// the log call. Keys in use: component, request_id, user_id, error.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	With(args ...any) Logger
}
