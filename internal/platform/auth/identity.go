package auth

import "context"

type contextKey string

const identityContextKey contextKey = "github.com/solenne/storefront/internal/platform/auth/identity"

// Identity captures the authenticated session attached to a request. Token
// is the raw bearer credential, forwarded verbatim to the commerce backend
// which owns session validation.
type Identity struct {
	UID   string
	Token string
}

// WithIdentity stores the identity on the context.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	if identity == nil {
		return ctx
	}
	return context.WithValue(ctx, identityContextKey, identity)
}

// IdentityFromContext retrieves the identity stored by the middleware.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(*Identity)
	if !ok || identity == nil {
		return nil, false
	}
	return identity, true
}
