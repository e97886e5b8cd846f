// Package resend delivers mail through the Resend HTTP API.
package resend

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v3"

	"github.com/albertogferrario/ferro/pkg/mailer"
)

// Config holds Resend credentials and the default sender identity.
type Config struct {
	APIKey      string `yaml:"api_key" env:"RESEND_API_KEY,required"`
	SenderEmail string `yaml:"sender_email" env:"RESEND_FROM_EMAIL"`
	SenderName  string `yaml:"sender_name" env:"RESEND_FROM_NAME"`
}

// Sender implements mailer.Sender on top of the Resend client.
type Sender struct {
	client *resend.Client
	cfg    Config
}

// New creates a Sender.
func New(cfg Config) *Sender {
	return &Sender{client: resend.NewClient(cfg.APIKey), cfg: cfg}
}

// Send delivers one message. Messages without an explicit From use the
// configured sender identity.
func (s *Sender) Send(ctx context.Context, msg *mailer.Message) error {
	from := msg.From
	if from == "" {
		from = mailer.Address(s.cfg.SenderName, s.cfg.SenderEmail)
	}

	req := &resend.SendEmailRequest{
		From:    from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
		ReplyTo: msg.ReplyTo,
		Cc:      msg.CC,
		Bcc:     msg.BCC,
		Headers: msg.Headers,
	}

	for _, a := range msg.Attachments {
		req.Attachments = append(req.Attachments, &resend.Attachment{
			Filename:    a.Filename,
			Content:     a.Content,
			ContentType: a.ContentType,
			ContentId:   a.ContentID,
		})
	}
	for name, value := range msg.Tags {
		req.Tags = append(req.Tags, resend.Tag{Name: name, Value: value})
	}

	if _, err := s.client.Emails.SendWithContext(ctx, req); err != nil {
		return fmt.Errorf("resend: send email: %w", err)
	}
	return nil
}
