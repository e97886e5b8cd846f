package mailer

import "context"

// Message is a fully prepared email ready for delivery.
type Message struct {
	Headers     map[string]string
	Tags        map[string]string
	Subject     string
	HTML        string
	Text        string
	From        string
	ReplyTo     string
	To          []string
	CC          []string
	BCC         []string
	Attachments []Attachment
}

// Attachment is a file attached to a message. ContentID, when set, makes
// the attachment addressable inline via cid: URLs.
type Attachment struct {
	Filename    string
	ContentType string
	ContentID   string
	Content     []byte
}

// Address formats a display name and email into RFC 5322 form:
// "Name <email>", or just the email when the name is empty.
func Address(name, email string) string {
	if name == "" {
		return email
	}
	return name + " <" + email + ">"
}

// Sender delivers prepared messages through a provider. Implementations
// live in subpackages (resend) or in application code for tests.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}
