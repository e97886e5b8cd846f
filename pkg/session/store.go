package session

import (
	"context"
	"time"
)

// Store persists sessions. Implementations are addressed by token for reads
// (the token is what the cookie carries) and by ID for deletes.
type Store interface {
	// Create persists a new session.
	Create(ctx context.Context, s *Session) error

	// Get loads a session by token. Returns ErrNotFound when absent and
	// ErrExpired when past its expiry.
	Get(ctx context.Context, token string) (*Session, error)

	// Update writes back a modified session.
	Update(ctx context.Context, s *Session) error

	// Delete removes a session by ID.
	Delete(ctx context.Context, id string) error

	// DeleteByUserID removes every session of a user ("log out everywhere").
	DeleteByUserID(ctx context.Context, userID string) error

	// Touch bumps LastActiveAt without a full load/update cycle.
	Touch(ctx context.Context, id string, lastActiveAt time.Time) error
}
