package auth

import (
	"context"
	"reflect"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type Auther struct {
	provider       IdentityProvider
	logger         Logger
	tokenService   TokenService
	tokenValidator TokenValidator
	activity       ActivitySink
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider IdentityProvider, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetResetTokenDuration(),
		opts.GetIssuer(),
		opts.GetAudience(),
		defLogger{},
	)

	return &Auther{
		provider:     provider,
		logger:       defLogger{},
		tokenService: tokenService,
		activity:     noopActivitySink{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	return s
}

// WithTokenService sets a custom token service.
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// WithTokenValidator sets a custom token validator for externally issued tokens.
func (s *Auther) WithTokenValidator(validator TokenValidator) *Auther {
	s.tokenValidator = validator
	return s
}

// WithActivitySink sets the sink that receives login audit events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activity = normalizeActivitySink(sink)
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies the credentials and mints a session token. Failures
// come back as ErrInvalidCredentials regardless of whether the email
// exists, so the endpoint cannot be used to enumerate accounts.
func (s *Auther) Login(ctx context.Context, identifier, password string) (string, error) {
	identity, err := s.provider.VerifyIdentity(ctx, identifier, password)
	if err != nil {
		s.logger.Error("Login verify identity error", "error", err)
		s.recordActivity(ctx, ActivityEvent{
			EventType: ActivityEventLoginFailure,
			Email:     NormalizeEmail(identifier),
		})
		if IsCredentialMismatch(err) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("Login identity is nil or zero value")
		return "", ErrInvalidCredentials
	}

	token, err := s.tokenService.IssueSessionToken(identity)
	if err != nil {
		s.logger.Error("Login failed to issue session token", "error", err)
		return "", err
	}

	s.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventLoginSuccess,
		Email:     identity.Email(),
		UserID:    identity.ID(),
	})

	return token, nil
}

func (s *Auther) recordActivity(ctx context.Context, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	if err := s.activity.Record(ctx, event); err != nil {
		s.logger.Warn("failed to record activity event", "event", string(event.EventType), "error", err)
	}
}

// PrincipalFromToken validates a raw bearer token and maps it to an
// authenticated principal. Reset tokens are rejected here.
func (s *Auther) PrincipalFromToken(raw string) (*AuthenticatedPrincipal, error) {
	validator := s.tokenValidator
	if validator == nil {
		validator = s.tokenService
	}

	claims, err := validator.Validate(raw)
	if err != nil {
		s.logger.Debug("PrincipalFromToken validation failed", "error", err)
		return nil, err
	}

	principal, err := PrincipalFromClaims(claims)
	if err != nil {
		s.logger.Debug("PrincipalFromToken failed to map claims", "error", err)
		return nil, err
	}

	return principal, nil
}

// IdentityFromPrincipal resolves the stored identity behind a principal.
func (s *Auther) IdentityFromPrincipal(ctx context.Context, principal *AuthenticatedPrincipal) (Identity, error) {
	if principal == nil {
		return nil, ErrUnauthenticated
	}

	identity, err := s.provider.FindIdentityByIdentifier(ctx, principal.Email)
	if err != nil {
		s.logger.Error("IdentityFromPrincipal find identity error", "error", err)
		return nil, err
	}

	return identity, nil
}

// IsCredentialMismatch reports whether the error is one of the lookup
// or password failures that login must collapse into a generic
// invalid-credentials response.
func IsCredentialMismatch(err error) bool {
	if err == nil {
		return false
	}
	return goerrors.Is(err, ErrMismatchedHashAndPassword) ||
		goerrors.Is(err, ErrIdentityNotFound) ||
		goerrors.Is(err, ErrInvalidCredentials)
}
