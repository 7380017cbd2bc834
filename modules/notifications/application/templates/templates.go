// Package templates renders notification bodies from the embedded HTML
// templates.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed *.html
var files embed.FS

const (
	Welcome          = "welcome.html"
	PaymentCompleted = "payment_completed.html"
	PaymentFailed    = "payment_failed.html"
)

type Renderer struct {
	t *template.Template
}

func New() (*Renderer, error) {
	t, err := template.ParseFS(files, "*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing notification templates: %w", err)
	}
	return &Renderer{t: t}, nil
}

func (r *Renderer) Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.t.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return buf.String(), nil
}
