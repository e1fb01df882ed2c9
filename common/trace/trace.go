// Package trace assigns an ID to every command cycle and carries it through
// context so log lines, journal rows and metrics for one utterance can be
// correlated.
package trace

import (
	"context"

	"github.com/google/uuid"
)

// traceKey is the unexported context key used to store the cycle ID.
type traceKey struct{}

// NewCycleID returns a fresh, globally unique cycle identifier.
func NewCycleID() string {
	return "c_" + uuid.NewString()
}

// WithTraceID returns a child context carrying the given cycle ID.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceKey{}, id)
}

// FromContext extracts the cycle ID from ctx, returning "" if absent.
func FromContext(ctx context.Context) string {
	if v, ok := ctx.Value(traceKey{}).(string); ok {
		return v
	}
	return ""
}
