package session

import "errors"

var (
	// ErrNotConfigured is returned when session features are used without
	// WithSession on the app.
	ErrNotConfigured = errors.New("session: not configured")

	ErrNotFound     = errors.New("session: not found")
	ErrExpired      = errors.New("session: expired")
	ErrInvalidToken = errors.New("session: invalid token")

	// ErrFingerprintMismatch may indicate a hijacked session token.
	ErrFingerprintMismatch = errors.New("session: fingerprint mismatch")
)
