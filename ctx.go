package auth

import (
	"context"
)

var principalCtxKey = &contextKey{"principal"}
var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithPrincipalContext sets the AuthenticatedPrincipal in the given context
func WithPrincipalContext(r context.Context, principal *AuthenticatedPrincipal) context.Context {
	return context.WithValue(r, principalCtxKey, principal)
}

// PrincipalFromContext finds the principal from the context.
func PrincipalFromContext(ctx context.Context) (*AuthenticatedPrincipal, bool) {
	raw, ok := ctx.Value(principalCtxKey).(*AuthenticatedPrincipal)
	return raw, ok
}

// WithClaimsContext sets the AuthClaims in the given context
func WithClaimsContext(r context.Context, claims AuthClaims) context.Context {
	return context.WithValue(r, claimsCtxKey, claims)
}

// GetClaims extracts the AuthClaims from the standard context
func GetClaims(ctx context.Context) (AuthClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(AuthClaims)
	return raw, ok
}

// HasRole reports whether the context principal holds at least minRole.
func HasRole(ctx context.Context, minRole UserRole) bool {
	principal, ok := PrincipalFromContext(ctx)
	if !ok || principal == nil {
		return false
	}
	return principal.Role.IsAtLeast(minRole)
}
