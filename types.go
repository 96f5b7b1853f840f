package auth

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Login(ctx context.Context, identifier, password string) (string, error)
	PrincipalFromToken(token string) (*AuthenticatedPrincipal, error)
	TokenService() TokenService
}

// Identity holds the attributes of an identity
type Identity interface {
	ID() string
	Email() string
	FullName() string
	Role() UserRole
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetContextKey() string
	GetTokenExpiration() int
	GetResetTokenDuration() int
	GetTokenLookup() string
	GetAuthScheme() string
	GetIssuer() string
	GetAudience() []string
	GetVerificationCodeTTL() time.Duration
	GetResendLimit() int
	GetResendWindow() time.Duration
	GetResetLinkBase() string
}

// IdentityProvider ensure we have a store to retrieve auth identity
type IdentityProvider interface {
	VerifyIdentity(ctx context.Context, identifier, password string) (Identity, error)
	FindIdentityByIdentifier(ctx context.Context, identifier string) (Identity, error)
}

// TokenService mints and validates the tokens we hand out. Session
// tokens carry the subject role, reset tokens are single purpose and
// short lived.
type TokenService interface {
	IssueSessionToken(identity Identity) (string, error)
	IssueResetToken(identifier string) (string, error)
	SignClaims(claims *JWTClaims) (string, error)
	Validate(tokenString string) (AuthClaims, error)
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// Mailer delivers the account recovery messages. Implementations live
// in the mailer subpackage, tests stub this out.
type Mailer interface {
	SendVerificationCode(ctx context.Context, to, fullName, code string) error
	SendResetLink(ctx context.Context, to, fullName, link string) error
}

// CaptchaVerifier checks a client supplied challenge response before
// we act on anonymous requests.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token string) error
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
