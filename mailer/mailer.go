// Package mailer delivers account recovery email through the Resend
// HTTP API, rendering bodies from embedded templates.
package mailer

import (
	"bytes"
	"embed"
	"net/http"

	"github.com/gofiber/template/django/v3"
	goerrors "github.com/goliatone/go-errors"
)

//go:embed templates
var templatesFS embed.FS

const (
	verificationTemplate = "templates/verification_code"
	resetLinkTemplate    = "templates/reset_link"
)

func newTemplateEngine() (*django.Engine, error) {
	engine := django.NewFileSystem(http.FS(templatesFS), ".html")
	if err := engine.Load(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load mail templates")
	}
	return engine, nil
}

func renderTemplate(engine *django.Engine, name string, binding map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := engine.Render(&buf, name, binding); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to render mail template")
	}
	return buf.String(), nil
}
