// Package requestid carries per-request identifiers through a context so
// that log records can be correlated without passing them explicitly.
package requestid

import (
	"context"

	"github.com/google/uuid"
)

type (
	idKey   struct{}
	userKey struct{}
)

// New generates a random UUID v4 request ID.
func New() string {
	return uuid.NewString()
}

// WithRequestID returns a copy of ctx with the request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, idKey{}, id)
}

// FromContext extracts the request ID from ctx. Returns "" if absent.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(idKey{}).(string)
	return id
}

// WithUser attaches the authenticated user's email.
func WithUser(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, userKey{}, email)
}

// UserFromContext returns the authenticated email, or "".
func UserFromContext(ctx context.Context) string {
	email, _ := ctx.Value(userKey{}).(string)
	return email
}
