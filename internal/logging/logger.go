// Package logging is the structured logging layer of chatkeeper. Every
// component receives a Logger tagged with its name through ForComponent.
// Records may carry usernames, session ids and counts; values under the
// sensitive keys listed in redact.go never reach the output.
package logging

import "context"

// KeyComponent is the attribute naming the emitting component.
const KeyComponent = "component"

// Logger takes a message plus key/value pairs:
//
//	log.Info(ctx, "session created", "username", name, "expires", exp)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a logger that adds args to every record.
	With(args ...any) Logger
}

// ForComponent returns l tagged with the component name.
func ForComponent(l Logger, name string) Logger {
	return l.With(KeyComponent, name)
}
