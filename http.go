package auth

import (
	"net/http"
	"time"

	"github.com/benhvien1a/go-auth/middleware/jwtware"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

func nowUTC() time.Time {
	return time.Now().UTC()
}

// APIResponse is the envelope every endpoint answers with.
type APIResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message,omitempty"`
	Data      any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Path      string    `json:"path"`
}

// JSONSuccess writes a success envelope.
func JSONSuccess(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: nowUTC(),
		Path:      c.Path(),
	})
}

// RequestGate builds the token middleware bound to this module's
// claims mapping. It never rejects, the route policy does.
func RequestGate(validator TokenValidator, cfg Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		TokenValidator:  tokenValidatorAdapter{validator},
		ContextKey:      cfg.GetContextKey(),
		AuthScheme:      cfg.GetAuthScheme(),
		TokenLookup:     cfg.GetTokenLookup(),
		ExpectedPurpose: TokenPurposeSession,
		ContextEnricher: ContextEnricherAdapter,
	})
}

// tokenValidatorAdapter bridges the root package validator into the
// middleware's local interface.
type tokenValidatorAdapter struct {
	validator TokenValidator
}

func (a tokenValidatorAdapter) Validate(tokenString string) (jwtware.AuthClaims, error) {
	claims, err := a.validator.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// PrincipalFromFiberCtx maps the claims the gate bound to the request
// into a principal. Returns nil when the request is unauthenticated.
func PrincipalFromFiberCtx(c *fiber.Ctx, contextKey string) *AuthenticatedPrincipal {
	raw, ok := jwtware.ClaimsFromCtx(c, contextKey)
	if !ok {
		return nil
	}

	claims, ok := raw.(AuthClaims)
	if !ok {
		return nil
	}

	principal, err := PrincipalFromClaims(claims)
	if err != nil {
		return nil
	}

	return principal
}

// RequireAccess evaluates the route policy for every request. It is
// where unauthenticated requests get their 401 and under-privileged
// sessions their 403.
func RequireAccess(policy *RoutePolicy, cfg Config, logger Logger) fiber.Handler {
	if logger == nil {
		logger = defLogger{}
	}

	return func(c *fiber.Ctx) error {
		principal := PrincipalFromFiberCtx(c, cfg.GetContextKey())

		if err := policy.Evaluate(c.Method(), c.Path(), principal); err != nil {
			logger.Debug("route policy rejected request", "method", c.Method(), "path", c.Path(), "error", err)
			return JSONError(c, err, logger)
		}

		return c.Next()
	}
}

// JSONError maps an error to the envelope and a status code. Internal
// errors are logged in full and surfaced with a generic message.
func JSONError(c *fiber.Ctx, err error, logger Logger) error {
	if logger == nil {
		logger = defLogger{}
	}

	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	status := statusFromError(richErr)
	message := richErr.Message

	if status >= http.StatusInternalServerError {
		logger.Error(
			"request failed",
			"error", richErr.Message,
			"category", richErr.Category,
			"details", print.MaybePrettyJSON(richErr.Metadata),
		)
		message = "An unexpected server error occurred"
	}

	return c.Status(status).JSON(APIResponse{
		Success:   false,
		Error:     message,
		Timestamp: nowUTC(),
		Path:      c.Path(),
	})
}

func statusFromError(richErr *errors.Error) int {
	switch richErr.Category {
	case errors.CategoryAuthz:
		return http.StatusForbidden
	case errors.CategoryAuth:
		return http.StatusUnauthorized
	case errors.CategoryNotFound:
		return http.StatusNotFound
	case errors.CategoryConflict:
		return http.StatusConflict
	case errors.CategoryValidation, errors.CategoryBadInput:
		return http.StatusBadRequest
	case errors.CategoryRateLimit:
		return http.StatusTooManyRequests
	}

	if richErr.Code > 0 {
		return richErr.Code
	}

	return http.StatusInternalServerError
}
