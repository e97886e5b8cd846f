package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps sessions in Redis with the session expiry as the key TTL.
//
// Layout under the prefix (default "session"):
//
//	<prefix>:t:<token>  JSON session record
//	<prefix>:i:<id>     token lookup for delete-by-ID
//	<prefix>:u:<user>   set of session IDs per user
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore wraps client as a session Store.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "session"
	}
	return &RedisStore{client: client, prefix: prefix}
}

// record is the persisted shape; the in-memory flags never leave the process.
type record struct {
	CreatedAt    time.Time      `json:"created_at"`
	LastActiveAt time.Time      `json:"last_active_at"`
	ExpiresAt    time.Time      `json:"expires_at"`
	UserID       *string        `json:"user_id,omitempty"`
	Values       map[string]any `json:"values,omitempty"`
	ID           string         `json:"id"`
	Token        string         `json:"token"`
	IP           string         `json:"ip,omitempty"`
	UserAgent    string         `json:"user_agent,omitempty"`
	Fingerprint  string         `json:"fingerprint,omitempty"`
}

func toRecord(s *Session) record {
	return record{
		CreatedAt:    s.CreatedAt,
		LastActiveAt: s.LastActiveAt,
		ExpiresAt:    s.ExpiresAt,
		UserID:       s.UserID,
		Values:       s.Values,
		ID:           s.ID,
		Token:        s.Token,
		IP:           s.IP,
		UserAgent:    s.UserAgent,
		Fingerprint:  s.Fingerprint,
	}
}

func (r record) toSession() *Session {
	return &Session{
		CreatedAt:    r.CreatedAt,
		LastActiveAt: r.LastActiveAt,
		ExpiresAt:    r.ExpiresAt,
		UserID:       r.UserID,
		Values:       r.Values,
		ID:           r.ID,
		Token:        r.Token,
		IP:           r.IP,
		UserAgent:    r.UserAgent,
		Fingerprint:  r.Fingerprint,
	}
}

func (s *RedisStore) tokenKey(token string) string { return s.prefix + ":t:" + token }
func (s *RedisStore) idKey(id string) string       { return s.prefix + ":i:" + id }
func (s *RedisStore) userKey(userID string) string { return s.prefix + ":u:" + userID }

func (s *RedisStore) Create(ctx context.Context, sess *Session) error {
	return s.write(ctx, sess)
}

func (s *RedisStore) Update(ctx context.Context, sess *Session) error {
	return s.write(ctx, sess)
}

func (s *RedisStore) write(ctx context.Context, sess *Session) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return ErrExpired
	}

	data, err := json.Marshal(toRecord(sess))
	if err != nil {
		return err
	}

	// On token rotation the old token must stop resolving immediately.
	prev, err := s.client.Get(ctx, s.idKey(sess.ID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	pipe := s.client.TxPipeline()
	if prev != "" && prev != sess.Token {
		pipe.Del(ctx, s.tokenKey(prev))
	}
	pipe.Set(ctx, s.tokenKey(sess.Token), data, ttl)
	pipe.Set(ctx, s.idKey(sess.ID), sess.Token, ttl)
	if sess.UserID != nil && *sess.UserID != "" {
		pipe.SAdd(ctx, s.userKey(*sess.UserID), sess.ID)
		pipe.Expire(ctx, s.userKey(*sess.UserID), ttl)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	data, err := s.client.Get(ctx, s.tokenKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}

	sess := rec.toSession()
	if sess.IsExpired() {
		_ = s.Delete(ctx, sess.ID)
		return nil, ErrExpired
	}
	return sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	token, err := s.client.Get(ctx, s.idKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}

	// Load once more to unlink the user set entry.
	if data, err := s.client.Get(ctx, s.tokenKey(token)).Bytes(); err == nil {
		var rec record
		if json.Unmarshal(data, &rec) == nil && rec.UserID != nil {
			_ = s.client.SRem(ctx, s.userKey(*rec.UserID), id).Err()
		}
	}

	return s.client.Del(ctx, s.tokenKey(token), s.idKey(id)).Err()
}

func (s *RedisStore) DeleteByUserID(ctx context.Context, userID string) error {
	ids, err := s.client.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	for _, id := range ids {
		if err := s.Delete(ctx, id); err != nil {
			return err
		}
	}
	return s.client.Del(ctx, s.userKey(userID)).Err()
}

func (s *RedisStore) Touch(ctx context.Context, id string, lastActiveAt time.Time) error {
	token, err := s.client.Get(ctx, s.idKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return err
	}

	sess, err := s.Get(ctx, token)
	if err != nil {
		return err
	}
	sess.LastActiveAt = lastActiveAt
	return s.write(ctx, sess)
}

var _ Store = (*RedisStore)(nil)
