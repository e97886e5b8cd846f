package mailer

import "errors"

var (
	ErrNoRecipient        = errors.New("mailer: message has no recipient")
	ErrNoSubject          = errors.New("mailer: message has no subject")
	ErrNoContent          = errors.New("mailer: message has no HTML body")
	ErrTemplateNotFound   = errors.New("mailer: template not found")
	ErrLayoutNotFound     = errors.New("mailer: layout not found")
	ErrRenderFailed       = errors.New("mailer: render failed")
	ErrSendFailed         = errors.New("mailer: send failed")
	ErrInvalidFrontMatter = errors.New("mailer: invalid front matter")
)
