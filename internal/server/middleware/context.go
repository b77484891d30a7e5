package middleware

import (
	"context"

	"github.com/gosuda/collabboard/internal/domain"
)

type contextKey string

const ContextKeyIdentity contextKey = "identity"

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, ContextKeyIdentity, id)
}

// IdentityFromContext returns the authenticated identity, if any. A zero
// identity is reported as absent.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	v, ok := ctx.Value(ContextKeyIdentity).(domain.Identity)
	if !ok || v.IsZero() {
		return domain.Identity{}, false
	}
	return v, true
}
