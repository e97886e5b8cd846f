package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albertogferrario/ferro/pkg/redis"
)

func TestConnect_Validation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("empty URL", func(t *testing.T) {
		t.Parallel()
		_, err := redis.Connect(ctx, redis.Config{})
		require.ErrorIs(t, err, redis.ErrEmptyURL)
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		t.Parallel()
		_, err := redis.Connect(ctx, redis.Config{URL: "http://localhost:6379"})
		require.ErrorIs(t, err, redis.ErrInvalidURL)
	})

	t.Run("malformed URL", func(t *testing.T) {
		t.Parallel()
		_, err := redis.Connect(ctx, redis.Config{URL: "redis://[::1"})
		require.ErrorIs(t, err, redis.ErrInvalidURL)
	})

	t.Run("unreachable host gives up after retries", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		_, err := redis.Connect(ctx, redis.Config{
			URL:           "redis://127.0.0.1:1",
			RetryAttempts: 1,
			RetryInterval: 10 * time.Millisecond,
			DialTimeout:   50 * time.Millisecond,
		})
		require.ErrorIs(t, err, redis.ErrConnectionFailed)
	})
}

func TestHealthcheck_NilClient(t *testing.T) {
	t.Parallel()

	check := redis.Healthcheck(nil)
	err := check(context.Background())
	assert.ErrorIs(t, err, redis.ErrHealthcheckFailed)
}
