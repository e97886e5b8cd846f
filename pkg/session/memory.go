package session

import (
	"context"
	"maps"
	"sync"
	"time"
)

// MemoryStore is a process-local Store for tests, examples, and single-node
// development setups.
type MemoryStore struct {
	byToken map[string]*Session
	byID    map[string]string          // id -> token
	byUser  map[string]map[string]bool // userID -> set of ids
	mu      sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byToken: make(map[string]*Session),
		byID:    make(map[string]string),
		byUser:  make(map[string]map[string]bool),
	}
}

// clone keeps callers from mutating stored state without going through
// Update.
func clone(s *Session) *Session {
	cp := *s
	cp.Values = maps.Clone(s.Values)
	return &cp
}

func (m *MemoryStore) Create(ctx context.Context, s *Session) error {
	return m.Update(ctx, s)
}

func (m *MemoryStore) Update(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Drop a stale token mapping when the token was rotated.
	if old, ok := m.byID[s.ID]; ok && old != s.Token {
		delete(m.byToken, old)
	}

	m.byToken[s.Token] = clone(s)
	m.byID[s.ID] = s.Token

	if s.UserID != nil && *s.UserID != "" {
		set, ok := m.byUser[*s.UserID]
		if !ok {
			set = make(map[string]bool)
			m.byUser[*s.UserID] = set
		}
		set[s.ID] = true
	}
	return nil
}

func (m *MemoryStore) Get(_ context.Context, token string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.byToken[token]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if s.IsExpired() {
		m.mu.Lock()
		m.removeLocked(s.ID)
		m.mu.Unlock()
		return nil, ErrExpired
	}
	return clone(s), nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(id)
	return nil
}

func (m *MemoryStore) DeleteByUserID(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id := range m.byUser[userID] {
		m.removeLocked(id)
	}
	delete(m.byUser, userID)
	return nil
}

func (m *MemoryStore) Touch(_ context.Context, id string, lastActiveAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	token, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	m.byToken[token].LastActiveAt = lastActiveAt
	return nil
}

func (m *MemoryStore) removeLocked(id string) {
	token, ok := m.byID[id]
	if !ok {
		return
	}
	if s, ok := m.byToken[token]; ok && s.UserID != nil {
		delete(m.byUser[*s.UserID], id)
	}
	delete(m.byToken, token)
	delete(m.byID, id)
}

var _ Store = (*MemoryStore)(nil)
