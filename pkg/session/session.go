// Package session defines the session value type and the Store interface,
// with Redis and in-memory implementations. Lifecycle (cookies, lazy load,
// rotation) lives in the application's session manager.
package session

import (
	"errors"
	"time"
)

// Session carries authenticated identity, request metadata, and arbitrary
// values. Mutations flip a dirty flag so the manager only persists sessions
// that changed.
type Session struct {
	CreatedAt    time.Time
	LastActiveAt time.Time
	ExpiresAt    time.Time

	UserID      *string        // nil for anonymous sessions
	Values      map[string]any `json:"values"`
	ID          string         // stable identifier
	Token       string         // cookie token, rotated on auth change
	IP          string
	UserAgent   string
	Fingerprint string // client fingerprint for hijack detection

	dirty bool
	isNew bool
}

// New creates a fresh session, marked new and dirty so it gets persisted on
// first write-back.
func New(id, token string, expiresAt time.Time) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		Token:        token,
		Values:       make(map[string]any),
		CreatedAt:    now,
		LastActiveAt: now,
		ExpiresAt:    expiresAt,
		isNew:        true,
		dirty:        true,
	}
}

// IsAuthenticated reports whether a user is bound to the session.
func (s *Session) IsAuthenticated() bool {
	return s.UserID != nil && *s.UserID != ""
}

// Set stores a value and marks the session dirty.
func (s *Session) Set(key string, val any) {
	if s.Values == nil {
		s.Values = make(map[string]any)
	}
	s.Values[key] = val
	s.dirty = true
}

// Get returns a stored value.
func (s *Session) Get(key string) (any, bool) {
	if s.Values == nil {
		return nil, false
	}
	val, ok := s.Values[key]
	return val, ok
}

// Delete removes a value; the session is only dirtied when the key existed.
func (s *Session) Delete(key string) {
	if s.Values == nil {
		return
	}
	if _, ok := s.Values[key]; ok {
		delete(s.Values, key)
		s.dirty = true
	}
}

// IsDirty reports unsaved changes.
func (s *Session) IsDirty() bool { return s.dirty }

// MarkClean is called by the manager after a successful write-back.
func (s *Session) MarkClean() { s.dirty = false }

// MarkDirty forces a write-back on the next flush.
func (s *Session) MarkDirty() { s.dirty = true }

// IsNew reports whether the session has never been persisted.
func (s *Session) IsNew() bool { return s.isNew }

// MarkPersisted is called by the manager once the session is stored.
func (s *Session) MarkPersisted() { s.isNew = false }

// IsExpired reports whether the session passed its expiry.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Value returns a session value asserted to T.
func Value[T any](s *Session, key string) (T, error) {
	var zero T
	if s == nil {
		return zero, ErrNotFound
	}

	val, ok := s.Get(key)
	if !ok {
		return zero, ErrNotFound
	}
	typed, ok := val.(T)
	if !ok {
		return zero, errors.New("session: type mismatch for key: " + key)
	}
	return typed, nil
}

// ValueOr returns the typed value or def when missing/mistyped.
func ValueOr[T any](s *Session, key string, def T) T {
	val, err := Value[T](s, key)
	if err != nil {
		return def
	}
	return val
}
