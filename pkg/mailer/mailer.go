// Package mailer renders markdown email templates and sends them
// through pluggable providers. Templates carry YAML front matter for
// subjects and layout metadata; see the resend subpackage for the
// default delivery provider.
package mailer

import (
	"bytes"
	"context"
	"errors"
	texttemplate "text/template"
)

// Config holds mailer defaults resolvable from the environment.
type Config struct {
	FallbackSubject string `yaml:"fallback_subject" env:"MAILER_FALLBACK_SUBJECT" envDefault:"Notification"`
	DefaultLayout   string `yaml:"default_layout" env:"MAILER_DEFAULT_LAYOUT" envDefault:"base.html"`
	DefaultFrom     string `yaml:"default_from" env:"MAILER_DEFAULT_FROM"`
}

// Mailer renders markdown templates and delivers them through a Sender.
type Mailer struct {
	sender   Sender
	renderer *Renderer
	cfg      Config
}

// New creates a Mailer.
func New(sender Sender, renderer *Renderer, cfg Config) *Mailer {
	return &Mailer{sender: sender, renderer: renderer, cfg: cfg}
}

// SendParams describes a templated email. Only To and Template are
// required; everything else falls back to template front matter or the
// mailer config.
type SendParams struct {
	To       string
	Template string
	Data     any

	Subject     string
	Layout      string
	From        string
	ReplyTo     string
	CC          []string
	BCC         []string
	Tags        map[string]string
	Attachments []Attachment
}

// Send renders the template and delivers the message. The subject is
// resolved from params, then the template's "Subject" front matter key,
// then the configured fallback, and is itself executed as a
// text/template against params.Data.
func (m *Mailer) Send(ctx context.Context, params SendParams) error {
	if params.To == "" {
		return ErrNoRecipient
	}

	layout := params.Layout
	if layout == "" {
		layout = m.cfg.DefaultLayout
	}

	rendered, err := m.renderer.Render(layout, params.Template, params.Data)
	if err != nil {
		return err
	}

	subject := params.Subject
	if subject == "" {
		if s, ok := rendered.Meta["Subject"].(string); ok {
			subject = s
		} else {
			subject = m.cfg.FallbackSubject
		}
	}
	subject, err = renderSubject(subject, params.Data)
	if err != nil {
		return errors.Join(ErrRenderFailed, err)
	}

	from := params.From
	if from == "" {
		from = m.cfg.DefaultFrom
	}

	return m.SendMessage(ctx, &Message{
		To:          []string{params.To},
		Subject:     subject,
		HTML:        rendered.HTML,
		Text:        rendered.Text,
		From:        from,
		ReplyTo:     params.ReplyTo,
		CC:          params.CC,
		BCC:         params.BCC,
		Tags:        params.Tags,
		Attachments: params.Attachments,
	})
}

// SendMessage delivers a prepared message without template rendering.
func (m *Mailer) SendMessage(ctx context.Context, msg *Message) error {
	switch {
	case len(msg.To) == 0:
		return ErrNoRecipient
	case msg.Subject == "":
		return ErrNoSubject
	case msg.HTML == "":
		return ErrNoContent
	}

	if err := m.sender.Send(ctx, msg); err != nil {
		return errors.Join(ErrSendFailed, err)
	}
	return nil
}

func renderSubject(subject string, data any) (string, error) {
	tmpl, err := texttemplate.New("subject").Parse(subject)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
