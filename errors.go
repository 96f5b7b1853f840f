package auth

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeInvalidCreds        = "INVALID_CREDENTIALS"
	TextCodeAccountInactive     = "ACCOUNT_INACTIVE"
	TextCodeIdentityNotFound    = "IDENTITY_NOT_FOUND"
	TextCodeEmailNotFound       = "EMAIL_NOT_FOUND"
	TextCodeEmailTaken          = "EMAIL_TAKEN"
	TextCodeWeakPassword        = "WEAK_PASSWORD"
	TextCodeVerificationMissing = "VERIFICATION_NOT_FOUND"
	TextCodeCodeInvalid         = "VERIFICATION_CODE_INVALID"
	TextCodeCodeExpired         = "VERIFICATION_CODE_EXPIRED"
	TextCodeResendLimit         = "RESEND_LIMIT_REACHED"
	TextCodeUnauthenticated     = "UNAUTHENTICATED"
	TextCodeForbidden           = "FORBIDDEN"
	TextCodeCaptchaFailed       = "CAPTCHA_FAILED"
	TextCodeTokenExpired        = "TOKEN_EXPIRED"
	TextCodeTokenMalformed      = "TOKEN_MALFORMED"
	TextCodeClaimsMappingError  = "CLAIMS_MAPPING_ERROR"
	TextCodeEmptyPassword       = "EMPTY_PASSWORD"
)

// ErrNoEmptyString rejects empty passwords before hashing.
var ErrNoEmptyString = goerrors.New("password cannot be empty", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(goerrors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the structured counterpart of the
// bcrypt mismatch error. Callers surface it as ErrInvalidCredentials.
var ErrMismatchedHashAndPassword = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(goerrors.CodeUnauthorized)

// ErrInvalidCredentials covers both the unknown-identifier and the
// wrong-password case so login responses cannot be used to probe for
// registered accounts.
var ErrInvalidCredentials = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(goerrors.CodeUnauthorized)

// ErrAccountInactive rejects logins against disabled accounts.
var ErrAccountInactive = goerrors.New("account is inactive", goerrors.CategoryAuth).
	WithTextCode(TextCodeAccountInactive).
	WithCode(goerrors.CodeUnauthorized)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeIdentityNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrEmailNotFound is returned by the recovery flows, which unlike
// login report an unknown email explicitly.
var ErrEmailNotFound = goerrors.New("email not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeEmailNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrEmailTaken rejects registration against an existing account.
var ErrEmailTaken = goerrors.New("email already registered", goerrors.CategoryConflict).
	WithTextCode(TextCodeEmailTaken).
	WithCode(goerrors.CodeConflict)

// ErrWeakPassword means the candidate password failed the strength policy.
var ErrWeakPassword = goerrors.New(
	"password must be at least 8 characters and include lower case, upper case, digit, and special character",
	goerrors.CategoryValidation).
	WithTextCode(TextCodeWeakPassword).
	WithCode(goerrors.CodeBadRequest)

// ErrVerificationNotFound means no recovery challenge is on file for the email.
var ErrVerificationNotFound = goerrors.New("no verification request found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeVerificationMissing).
	WithCode(goerrors.CodeNotFound)

// ErrVerificationCodeInvalid means the submitted code does not match the stored one.
var ErrVerificationCodeInvalid = goerrors.New("verification code is invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeCodeInvalid).
	WithCode(goerrors.CodeUnauthorized)

// ErrVerificationCodeExpired means the code outlived its TTL.
var ErrVerificationCodeExpired = goerrors.New("verification code has expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeCodeExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrResendLimitReached throttles verification code resends.
var ErrResendLimitReached = goerrors.New("resend limit reached, try again later", goerrors.CategoryRateLimit).
	WithTextCode(TextCodeResendLimit)

// ErrUnauthenticated means the request carried no usable session.
var ErrUnauthenticated = goerrors.New("authentication required", goerrors.CategoryAuth).
	WithTextCode(TextCodeUnauthenticated).
	WithCode(goerrors.CodeUnauthorized)

// ErrForbidden means the session role does not satisfy the route policy.
var ErrForbidden = goerrors.New("insufficient role", goerrors.CategoryAuthz).
	WithTextCode(TextCodeForbidden).
	WithCode(goerrors.CodeForbidden)

// ErrCaptchaFailed means the captcha verification did not pass.
var ErrCaptchaFailed = goerrors.New("captcha verification failed", goerrors.CategoryValidation).
	WithTextCode(TextCodeCaptchaFailed).
	WithCode(goerrors.CodeBadRequest)

// ErrTokenExpired is the validation error for expired JWTs.
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed is the validation error for tokens we cannot parse
// or whose signature does not check out.
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrUnableToMapClaims unable to get claims from token
var ErrUnableToMapClaims = goerrors.New("unable to map claims", goerrors.CategoryAuth).
	WithTextCode(TextCodeClaimsMappingError).
	WithCode(goerrors.CodeUnauthorized)

// IsTokenExpiredError will check for expired tokens, including errors
// surfaced by the JWT library before we wrap them.
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if goerrors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for malformed or unverifiable tokens
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if goerrors.Is(err, ErrTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
