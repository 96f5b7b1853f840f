package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"

	goerrors "github.com/goliatone/go-errors"
)

// VerificationCodeLength is the number of digits in a recovery code.
const VerificationCodeLength = 6

var verificationCodeSpace = big.NewInt(1_000_000)

// GenerateVerificationCode returns a zero padded 6 digit code drawn
// uniformly from 000000 to 999999.
func GenerateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, verificationCodeSpace)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate verification code")
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
