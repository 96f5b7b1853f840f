// Package captcha verifies client challenge responses against the
// Google reCAPTCHA siteverify API.
package captcha

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

const defaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// ErrChallengeFailed means the provider rejected the token.
var ErrChallengeFailed = goerrors.New("captcha challenge failed", goerrors.CategoryValidation).
	WithTextCode("CAPTCHA_FAILED").
	WithCode(goerrors.CodeBadRequest)

// RecaptchaVerifier implements server side verification of reCAPTCHA
// tokens submitted with anonymous requests.
type RecaptchaVerifier struct {
	secret    string
	client    *http.Client
	verifyURL string
	minScore  float64
}

type Option func(*RecaptchaVerifier)

// WithHTTPClient overrides the HTTP client, used by tests.
func WithHTTPClient(client *http.Client) Option {
	return func(v *RecaptchaVerifier) {
		if client != nil {
			v.client = client
		}
	}
}

// WithVerifyURL points the verifier at a different endpoint.
func WithVerifyURL(endpoint string) Option {
	return func(v *RecaptchaVerifier) {
		if endpoint != "" {
			v.verifyURL = endpoint
		}
	}
}

// WithMinScore sets the acceptance threshold for v3 style scores.
func WithMinScore(score float64) Option {
	return func(v *RecaptchaVerifier) {
		v.minScore = score
	}
}

func NewRecaptchaVerifier(secret string, opts ...Option) (*RecaptchaVerifier, error) {
	if secret == "" {
		return nil, goerrors.New("recaptcha secret is required", goerrors.CategoryBadInput)
	}

	v := &RecaptchaVerifier{
		secret: secret,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		verifyURL: defaultVerifyURL,
		minScore:  0.5,
	}

	for _, opt := range opts {
		opt(v)
	}

	return v, nil
}

type verifyResponse struct {
	Success    bool     `json:"success"`
	Score      float64  `json:"score"`
	Action     string   `json:"action"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify checks the client token with the provider. A missing token
// fails immediately without a network round trip.
func (v *RecaptchaVerifier) Verify(ctx context.Context, token string) error {
	if token == "" {
		return ErrChallengeFailed
	}

	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to build captcha request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "captcha verification request failed")
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read captcha response")
	}

	var result verifyResponse
	if err := json.Unmarshal(payload, &result); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to decode captcha response")
	}

	if !result.Success {
		return ErrChallengeFailed
	}

	// v2 responses carry no score, zero means skip the threshold.
	if result.Score > 0 && result.Score < v.minScore {
		return ErrChallengeFailed
	}

	return nil
}
