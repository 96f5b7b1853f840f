package auth

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

// passwordSymbols is the accepted special character set. Anything
// outside letters, digits, and this set fails the policy.
const passwordSymbols = "@$!%*?&"

// MinPasswordLength is the smallest password the policy accepts.
const MinPasswordLength = 8

// IsStrongPassword reports whether the candidate satisfies the policy:
// at least 8 characters with at least one lower case letter, one upper
// case letter, one digit, and one special character.
func IsStrongPassword(password string) bool {
	if len(password) < MinPasswordLength {
		return false
	}

	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		default:
			return false
		}
	}

	return hasLower && hasUpper && hasDigit && hasSymbol
}

// ValidatePasswordStrength returns ErrWeakPassword when the candidate
// fails the policy, nil otherwise.
func ValidatePasswordStrength(password string) error {
	if !IsStrongPassword(password) {
		return ErrWeakPassword
	}
	return nil
}

// StrongPassword is the password policy as an ozzo validation rule for
// request payloads.
var StrongPassword = validation.By(func(value any) error {
	s, _ := value.(string)
	return ValidatePasswordStrength(s)
})
