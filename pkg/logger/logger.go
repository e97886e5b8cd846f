// Package logger builds structured slog loggers with request-scoped context
// extraction and optional Sentry forwarding.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// ContextExtractor pulls a slog attribute out of a context. Extractors run on every
// log call so request-scoped values (request ID, user ID) stay fresh.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// New returns a JSON logger writing to stdout at info level, decorated with
// the given extractors.
func New(extractors ...ContextExtractor) *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	return slog.New(Decorate(h, extractors...))
}

// NewDiscard returns a logger that drops everything. Used as the default
// when no logger is configured.
func NewDiscard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
