// Package cache provides a generic TTL cache with in-memory (LRU) and Redis
// backends, plus a stampede-safe GetOrSet helper.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache is a generic key-value cache.
//
// TTL semantics for Set: positive expires after the duration, zero falls
// back to the backend's default TTL, negative never expires.
type Cache[V any] interface {
	// Get returns the value for key, or ErrNotFound when missing/expired.
	Get(ctx context.Context, key string) (V, error)

	// Set stores value under key with the given TTL.
	Set(ctx context.Context, key string, value V, ttl time.Duration) error

	// Delete removes key.
	Delete(ctx context.Context, key string) error

	// Has reports whether key exists and has not expired.
	Has(ctx context.Context, key string) (bool, error)

	// Clear drops every entry.
	Clear(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// Codec serializes values for byte-oriented backends.
type Codec[V any] interface {
	Encode(v V) ([]byte, error)
	Decode(data []byte) (V, error)
}

type jsonCodec[V any] struct{}

func (jsonCodec[V]) Encode(v V) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrEncode, err)
	}
	return data, nil
}

func (jsonCodec[V]) Decode(data []byte) (V, error) {
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Join(ErrDecode, err)
	}
	return v, nil
}

var loadGroup singleflight.Group

type loaded[V any] struct {
	val V
	ttl time.Duration
}

// GetOrSet returns the cached value for key or computes it with load on a
// miss. Concurrent misses for the same key run load once (singleflight).
// A load error is returned as-is and nothing is cached.
func GetOrSet[V any](ctx context.Context, c Cache[V], key string, load func(ctx context.Context) (V, time.Duration, error)) (V, error) {
	if v, err := c.Get(ctx, key); err == nil {
		return v, nil
	}

	v, err, _ := loadGroup.Do(key, func() (any, error) {
		val, ttl, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return loaded[V]{val: val, ttl: ttl}, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}

	res := v.(loaded[V])

	// Best effort: a failed write only costs a recompute later.
	_ = c.Set(ctx, key, res.val, res.ttl)

	return res.val, nil
}
