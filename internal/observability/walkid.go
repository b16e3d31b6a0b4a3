// Package observability carries the ambient logging and tracing
// concerns shared by every suspension point of a cache walk.
package observability

import (
	"context"

	"github.com/google/uuid"
)

// walkIDKey is the context key correlating every suspension point
// (poll_upstream, poll_cache, update_cache, lock) of one
// Initial->Finish traversal.
type walkIDKey struct{}

// NewWalkID generates a fresh identifier for one state-machine walk.
func NewWalkID() string {
	return uuid.NewString()
}

// ContextWithWalkID attaches a walk ID to ctx.
func ContextWithWalkID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, walkIDKey{}, id)
}

// WalkIDFromContext extracts the walk ID previously attached with
// ContextWithWalkID, or "" if none is present.
func WalkIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(walkIDKey{}).(string); ok {
		return id
	}
	return ""
}

// GetOrCreateWalkID returns ctx unchanged with its existing walk ID if
// present, otherwise a derived context carrying a freshly generated
// one.
func GetOrCreateWalkID(ctx context.Context) (context.Context, string) {
	if id := WalkIDFromContext(ctx); id != "" {
		return ctx, id
	}
	id := NewWalkID()
	return ContextWithWalkID(ctx, id), id
}
