package engine

import "context"

// passIDKey is the context key for a caller-chosen pass id.
type passIDKey struct{}

// ContextWithPassID makes the next Run started with ctx use id as its pass
// id, so observers can select that pass's status changes before it starts.
func ContextWithPassID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, passIDKey{}, id)
}

// PassIDFromContext returns the pass id stored in ctx, or "".
func PassIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(passIDKey{}).(string); ok {
		return id
	}
	return ""
}
