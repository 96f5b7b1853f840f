package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gofiber/template/django/v3"
	goerrors "github.com/goliatone/go-errors"
)

const defaultBaseURL = "https://api.resend.com"

// ResendMailer sends recovery mail through the Resend HTTP API.
type ResendMailer struct {
	apiKey  string
	from    string
	client  *http.Client
	baseURL string
	engine  *django.Engine
	codeTTL time.Duration
}

type ResendOption func(*ResendMailer)

// WithHTTPClient overrides the HTTP client, used by tests.
func WithHTTPClient(client *http.Client) ResendOption {
	return func(m *ResendMailer) {
		if client != nil {
			m.client = client
		}
	}
}

// WithBaseURL points the mailer at a different API host.
func WithBaseURL(baseURL string) ResendOption {
	return func(m *ResendMailer) {
		if baseURL != "" {
			m.baseURL = baseURL
		}
	}
}

// WithCodeTTL sets the expiry shown in the verification template.
func WithCodeTTL(ttl time.Duration) ResendOption {
	return func(m *ResendMailer) {
		if ttl > 0 {
			m.codeTTL = ttl
		}
	}
}

func NewResendMailer(apiKey, from string, opts ...ResendOption) (*ResendMailer, error) {
	if apiKey == "" {
		return nil, goerrors.New("resend api key is required", goerrors.CategoryBadInput)
	}

	engine, err := newTemplateEngine()
	if err != nil {
		return nil, err
	}

	m := &ResendMailer{
		apiKey: apiKey,
		from:   from,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		baseURL: defaultBaseURL,
		engine:  engine,
		codeTTL: 60 * time.Second,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m, nil
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// SendVerificationCode mails the 6 digit recovery code.
func (m *ResendMailer) SendVerificationCode(ctx context.Context, to, fullName, code string) error {
	html, err := renderTemplate(m.engine, verificationTemplate, map[string]any{
		"full_name":   displayName(fullName),
		"code":        code,
		"ttl_seconds": int(m.codeTTL.Seconds()),
	})
	if err != nil {
		return err
	}

	return m.send(ctx, to, "Your password reset code", html)
}

// SendResetLink mails a deep link into the reset form.
func (m *ResendMailer) SendResetLink(ctx context.Context, to, fullName, link string) error {
	html, err := renderTemplate(m.engine, resetLinkTemplate, map[string]any{
		"full_name": displayName(fullName),
		"link":      link,
	})
	if err != nil {
		return err
	}

	return m.send(ctx, to, "Reset your password", html)
}

func (m *ResendMailer) send(ctx context.Context, to, subject, html string) error {
	body := sendRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		HTML:    html,
	}

	b, err := json.Marshal(body)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode mail request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/emails", bytes.NewBuffer(b))
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to build mail request")
	}

	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "mail dispatch failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return goerrors.New("mail dispatch rejected", goerrors.CategoryInternal).
			WithMetadata(map[string]any{
				"status": resp.StatusCode,
				"body":   string(detail),
			})
	}

	return nil
}

func displayName(fullName string) string {
	if fullName == "" {
		return "there"
	}
	return fullName
}
