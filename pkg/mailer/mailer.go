package mailer

import (
	"bytes"
	"context"
	"fmt"
	"text/template"
)

// Config holds mailer defaults.
type Config struct {
	FallbackSubject string `env:"MAILER_FALLBACK_SUBJECT" envDefault:"Notification"`
	DefaultLayout   string `env:"MAILER_DEFAULT_LAYOUT" envDefault:"base.html"`
}

// Mailer renders templates and hands the result to a Sender.
type Mailer struct {
	sender   Sender
	renderer *Renderer
	cfg      Config
}

// New creates a mailer around a sender and a renderer.
func New(sender Sender, renderer *Renderer, cfg Config) *Mailer {
	return &Mailer{sender: sender, renderer: renderer, cfg: cfg}
}

// SendParams describes a templated email to send.
type SendParams struct {
	To       []string
	Template string
	Data     any
	Subject  string // overrides the template's frontmatter subject
	Layout   string // defaults to Config.DefaultLayout
	From     string
	ReplyTo  string
}

// Send renders the template and delivers the email. The subject is resolved
// in order: explicit param, frontmatter "Subject" (executed as a template
// against Data), configured fallback.
func (m *Mailer) Send(ctx context.Context, params SendParams) error {
	if len(params.To) == 0 {
		return ErrNoRecipient
	}

	layout := params.Layout
	if layout == "" {
		layout = m.cfg.DefaultLayout
	}

	result, err := m.renderer.Render(layout, params.Template, params.Data)
	if err != nil {
		return err
	}

	subject := params.Subject
	if subject == "" {
		subject, err = m.subjectFromMetadata(result.Metadata, params.Data)
		if err != nil {
			return err
		}
	}
	if subject == "" {
		subject = m.cfg.FallbackSubject
	}

	email := &Email{
		Subject: subject,
		HTML:    result.HTML,
		Text:    result.Text,
		From:    params.From,
		ReplyTo: params.ReplyTo,
		To:      params.To,
	}

	if err := m.sender.Send(ctx, email); err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	return nil
}

// subjectFromMetadata executes the frontmatter Subject as a template, so
// subjects can interpolate data ("{{.Count}} new listings").
func (m *Mailer) subjectFromMetadata(metadata map[string]any, data any) (string, error) {
	raw, ok := metadata["Subject"].(string)
	if !ok || raw == "" {
		return "", nil
	}

	tmpl, err := template.New("subject").Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: parse subject: %v", ErrRenderFailed, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: execute subject: %v", ErrRenderFailed, err)
	}
	return buf.String(), nil
}
