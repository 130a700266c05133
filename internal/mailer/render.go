package mailer

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"os"
	"strings"

	"github.com/ginjaninja78/x9-check-image-validator/internal/config"
	"github.com/ginjaninja78/x9-check-image-validator/internal/convert"
	"github.com/ginjaninja78/x9-check-image-validator/internal/deposit"
)

// DefaultSubjectFormat is used when no subject format is configured.
const DefaultSubjectFormat = "Deposit Received: {file}"

//go:embed templates/confirm-email.html.tmpl
var defaultTemplate string

var templateFuncs = template.FuncMap{
	"money": convert.FormatMoney,
}

// Renderer turns a deposit summary into an email subject and HTML body.
type Renderer struct {
	tmpl          *template.Template
	subjectFormat string
}

// NewRenderer builds a renderer from the email settings. An empty template
// path selects the built-in template.
func NewRenderer(cfg config.EmailConfig) (*Renderer, error) {
	text := defaultTemplate
	name := "confirm-email"
	if cfg.TemplatePath != "" {
		data, err := os.ReadFile(cfg.TemplatePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read email template: %w", err)
		}
		text = string(data)
		name = cfg.TemplatePath
	}

	tmpl, err := template.New(name).Funcs(templateFuncs).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse email template: %w", err)
	}

	subject := cfg.SubjectFormat
	if subject == "" {
		subject = DefaultSubjectFormat
	}
	return &Renderer{tmpl: tmpl, subjectFormat: subject}, nil
}

// Render renders summary with the built-in template.
func Render(summary *deposit.Summary) (subject, htmlBody string, err error) {
	r, err := NewRenderer(config.EmailConfig{})
	if err != nil {
		return "", "", err
	}
	return r.Render(summary)
}

// Render returns the subject and HTML body for summary.
func (r *Renderer) Render(summary *deposit.Summary) (subject, htmlBody string, err error) {
	subject = strings.ReplaceAll(r.subjectFormat, "{file}", summary.FileName)

	var buf bytes.Buffer
	data := struct {
		Subject string
		Summary *deposit.Summary
	}{subject, summary}
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("failed to render email body: %w", err)
	}
	return subject, buf.String(), nil
}
