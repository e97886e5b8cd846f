package mailer

import (
	"context"
	"log/slog"
)

// NoopSender discards messages, logging each delivery instead. Use it in
// development and tests where no mail provider is configured.
type NoopSender struct {
	log *slog.Logger
}

// NewNoopSender returns a sender that logs instead of delivering.
// A nil logger disables logging entirely.
func NewNoopSender(log *slog.Logger) *NoopSender {
	return &NoopSender{log: log}
}

func (s *NoopSender) Send(_ context.Context, msg *Message) error {
	if s.log != nil {
		s.log.Info("mail discarded", "to", msg.To, "subject", msg.Subject)
	}
	return nil
}
