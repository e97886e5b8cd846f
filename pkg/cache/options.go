package cache

import "time"

// MemoryOption configures the in-memory backend.
type MemoryOption func(*memoryOptions)

type memoryOptions struct {
	defaultTTL    time.Duration
	sweepInterval time.Duration
	maxEntries    int
}

func defaultMemoryOptions() *memoryOptions {
	return &memoryOptions{
		defaultTTL:    time.Hour,
		sweepInterval: time.Minute,
	}
}

// WithDefaultTTL sets the TTL applied when Set receives zero. Default: 1h.
func WithDefaultTTL(d time.Duration) MemoryOption {
	return func(o *memoryOptions) { o.defaultTTL = d }
}

// WithSweepInterval sets how often the background sweeper drops expired
// entries. Zero disables the sweeper. Default: 1m.
func WithSweepInterval(d time.Duration) MemoryOption {
	return func(o *memoryOptions) { o.sweepInterval = d }
}

// WithMaxEntries bounds the cache; the least recently used entry is evicted
// at capacity. Zero means unbounded. Default: 0.
func WithMaxEntries(n int) MemoryOption {
	return func(o *memoryOptions) { o.maxEntries = n }
}

// RedisOption configures the Redis backend.
type RedisOption func(*redisOptions)

type redisOptions struct {
	prefix     string
	defaultTTL time.Duration
}

func defaultRedisOptions() *redisOptions {
	return &redisOptions{defaultTTL: time.Hour}
}

// WithRedisDefaultTTL sets the TTL applied when Set receives zero.
// Default: 1h.
func WithRedisDefaultTTL(d time.Duration) RedisOption {
	return func(o *redisOptions) { o.defaultTTL = d }
}

// WithPrefix namespaces keys as "{prefix}:{key}" so several caches can
// share one Redis database.
func WithPrefix(prefix string) RedisOption {
	return func(o *redisOptions) { o.prefix = prefix }
}
