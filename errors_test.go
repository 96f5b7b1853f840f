package auth_test

import (
	"fmt"
	"testing"

	auth "github.com/benhvien1a/go-auth"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
)

func TestSentinelErrorShapes(t *testing.T) {
	tests := []struct {
		name     string
		err      *goerrors.Error
		category goerrors.Category
		textCode string
	}{
		{"invalid credentials", auth.ErrInvalidCredentials, goerrors.CategoryAuth, auth.TextCodeInvalidCreds},
		{"account inactive", auth.ErrAccountInactive, goerrors.CategoryAuth, auth.TextCodeAccountInactive},
		{"identity not found", auth.ErrIdentityNotFound, goerrors.CategoryNotFound, auth.TextCodeIdentityNotFound},
		{"email not found", auth.ErrEmailNotFound, goerrors.CategoryNotFound, auth.TextCodeEmailNotFound},
		{"email taken", auth.ErrEmailTaken, goerrors.CategoryConflict, auth.TextCodeEmailTaken},
		{"weak password", auth.ErrWeakPassword, goerrors.CategoryValidation, auth.TextCodeWeakPassword},
		{"verification missing", auth.ErrVerificationNotFound, goerrors.CategoryNotFound, auth.TextCodeVerificationMissing},
		{"code invalid", auth.ErrVerificationCodeInvalid, goerrors.CategoryAuth, auth.TextCodeCodeInvalid},
		{"code expired", auth.ErrVerificationCodeExpired, goerrors.CategoryAuth, auth.TextCodeCodeExpired},
		{"resend limit", auth.ErrResendLimitReached, goerrors.CategoryRateLimit, auth.TextCodeResendLimit},
		{"unauthenticated", auth.ErrUnauthenticated, goerrors.CategoryAuth, auth.TextCodeUnauthenticated},
		{"forbidden", auth.ErrForbidden, goerrors.CategoryAuthz, auth.TextCodeForbidden},
		{"captcha failed", auth.ErrCaptchaFailed, goerrors.CategoryValidation, auth.TextCodeCaptchaFailed},
		{"token expired", auth.ErrTokenExpired, goerrors.CategoryAuth, auth.TextCodeTokenExpired},
		{"token malformed", auth.ErrTokenMalformed, goerrors.CategoryAuth, auth.TextCodeTokenMalformed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.category, tc.err.Category)
			assert.Equal(t, tc.textCode, tc.err.TextCode)
			assert.NotEmpty(t, tc.err.Message)
		})
	}
}

func TestLoginErrorsShareOneMessage(t *testing.T) {
	// Both failure modes must be indistinguishable to clients.
	assert.Equal(t, auth.ErrInvalidCredentials.Message, auth.ErrMismatchedHashAndPassword.Message)
	assert.Equal(t, auth.ErrInvalidCredentials.TextCode, auth.ErrMismatchedHashAndPassword.TextCode)
}

func TestIsTokenExpiredError(t *testing.T) {
	assert.False(t, auth.IsTokenExpiredError(nil))
	assert.True(t, auth.IsTokenExpiredError(auth.ErrTokenExpired))
	assert.True(t, auth.IsTokenExpiredError(fmt.Errorf("jwt says: token is expired")))
	assert.False(t, auth.IsTokenExpiredError(auth.ErrTokenMalformed))
}

func TestIsMalformedError(t *testing.T) {
	assert.False(t, auth.IsMalformedError(nil))
	assert.True(t, auth.IsMalformedError(auth.ErrTokenMalformed))
	assert.True(t, auth.IsMalformedError(fmt.Errorf("missing or malformed JWT")))
	assert.False(t, auth.IsMalformedError(auth.ErrTokenExpired))
}
