package logging

import (
	"log/slog"
	"slices"
	"strings"
)

const redacted = "[REDACTED]"

// sensitiveKeys never have their values written, whatever the backend.
var sensitiveKeys = map[string]struct{}{
	"password":     {},
	"new_password": {},
	"message":      {},
	"response":     {},
	"key":          {},
	"user_key":     {},
	"master_key":   {},
	"wrapped_key":  {},
}

func sensitive(key string) bool {
	_, ok := sensitiveKeys[strings.ToLower(key)]
	return ok
}

// redact returns args with the values of sensitive keys replaced. args is
// returned as is when nothing needs hiding.
func redact(args []any) []any {
	var out []any
	set := func(i int, v any) {
		if out == nil {
			out = slices.Clone(args)
		}
		out[i] = v
	}

	for i := 0; i < len(args); {
		if a, ok := args[i].(slog.Attr); ok {
			if sensitive(a.Key) {
				set(i, slog.String(a.Key, redacted))
			}
			i++
			continue
		}
		if k, ok := args[i].(string); ok && i+1 < len(args) && sensitive(k) {
			set(i+1, redacted)
		}
		i += 2
	}

	if out == nil {
		return args
	}
	return out
}
