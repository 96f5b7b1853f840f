package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenPurpose distinguishes the token flavors we mint. Only session
// tokens establish a principal, reset tokens are limited to the
// password recovery flow.
const (
	TokenPurposeSession = "session"
	TokenPurposeReset   = "reset"
)

// AuthClaims represents structured JWT claims with role checking
type AuthClaims interface {
	Subject() string
	Role() string
	Purpose() string
	HasRole(role string) bool
	IsAtLeast(minRole string) bool
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete implementation of AuthClaims
type JWTClaims struct {
	jwt.RegisteredClaims
	UserRole     string `json:"role,omitempty"`
	TokenPurpose string `json:"purpose,omitempty"`
}

// Verify interface compliance
var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim, the normalized account email
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// Role returns the role claim. Reset tokens carry none.
func (c *JWTClaims) Role() string {
	return c.UserRole
}

// Purpose returns the purpose claim, defaulting to session for tokens
// minted before the claim existed.
func (c *JWTClaims) Purpose() string {
	if c.TokenPurpose == "" {
		return TokenPurposeSession
	}
	return c.TokenPurpose
}

// HasRole checks if the claims carry a specific role
func (c *JWTClaims) HasRole(role string) bool {
	return c.UserRole == role
}

// IsAtLeast checks if the claims role is at least the minimum required role
func (c *JWTClaims) IsAtLeast(minRole string) bool {
	return UserRole(c.UserRole).IsAtLeast(UserRole(minRole))
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// AuthenticatedPrincipal is the request scoped view of a validated
// session token. It is what route policies evaluate against.
type AuthenticatedPrincipal struct {
	Email     string
	Role      UserRole
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// PrincipalFromClaims builds a principal from validated claims. It
// refuses non session tokens so a reset token can never open a session.
func PrincipalFromClaims(claims AuthClaims) (*AuthenticatedPrincipal, error) {
	if claims == nil {
		return nil, ErrUnableToMapClaims
	}

	if claims.Purpose() != TokenPurposeSession {
		return nil, ErrTokenMalformed
	}

	role, ok := ParseRole(claims.Role())
	if !ok {
		return nil, ErrUnableToMapClaims
	}

	return &AuthenticatedPrincipal{
		Email:     claims.Subject(),
		Role:      role,
		IssuedAt:  claims.IssuedAt(),
		ExpiresAt: claims.Expires(),
	}, nil
}
