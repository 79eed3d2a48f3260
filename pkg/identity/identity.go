// Package identity resolves the calling owner from request headers or a
// bearer token and carries it through the request context.
package identity

import (
	"context"
	"slices"
)

type ctxKey struct{}

// Identity is the authenticated caller. OwnerID scopes every data access.
type Identity struct {
	OwnerID string
	Groups  []string
}

// InGroup reports whether the caller belongs to group.
func (id Identity) InGroup(group string) bool {
	return group != "" && slices.Contains(id.Groups, group)
}

// WithIdentity returns a new context with the given Identity attached.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext retrieves the Identity from the context.
// Returns the zero value and false if no identity is set.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

// OwnerID returns the caller's owner id, or "" when unauthenticated.
func OwnerID(ctx context.Context) string {
	id, _ := FromContext(ctx)
	return id.OwnerID
}
