package types

import "context"

// contextKey is a private type to avoid collisions with other packages'
// context values.
type contextKey string

// cycleIDKey carries the cycle ID assigned at the start of each run.
const cycleIDKey contextKey = "cycle_id"

// WithCycleID returns a context carrying the given cycle ID.
func WithCycleID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, cycleIDKey, id)
}

// GetCycleID extracts the cycle ID from the context, or "" if absent.
// Outbound HTTP calls stamp this into the X-Wetwatch-Cycle header so a
// detection can be traced across the forecast fetch, snapshot download,
// and alert delivery it caused.
func GetCycleID(ctx context.Context) string {
	if id, ok := ctx.Value(cycleIDKey).(string); ok {
		return id
	}
	return ""
}
