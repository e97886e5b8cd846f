package id_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albertogferrario/ferro/pkg/id"
)

const alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

func assertCharset(t *testing.T, s string) {
	t.Helper()
	for _, r := range s {
		require.True(t, strings.ContainsRune(alphabet, r), "unexpected character %q in %s", r, s)
	}
}

func TestNewULID(t *testing.T) {
	t.Parallel()

	t.Run("shape", func(t *testing.T) {
		t.Parallel()
		u := id.NewULID()
		assert.Len(t, u, 26)
		assertCharset(t, u)
	})

	t.Run("unique", func(t *testing.T) {
		t.Parallel()
		seen := make(map[string]bool, 1000)
		for range 1000 {
			u := id.NewULID()
			require.False(t, seen[u], "duplicate ULID %s", u)
			seen[u] = true
		}
	})

	t.Run("sorts by creation time", func(t *testing.T) {
		t.Parallel()
		first := id.NewULID()
		time.Sleep(2 * time.Millisecond)
		second := id.NewULID()
		assert.Less(t, first, second)
	})
}

func TestNewShortID(t *testing.T) {
	t.Parallel()

	t.Run("shape", func(t *testing.T) {
		t.Parallel()
		s := id.NewShortID()
		assert.Len(t, s, 16)
		assertCharset(t, s)
	})

	t.Run("unique", func(t *testing.T) {
		t.Parallel()
		seen := make(map[string]bool, 1000)
		for range 1000 {
			s := id.NewShortID()
			require.False(t, seen[s], "duplicate short ID %s", s)
			seen[s] = true
		}
	})

	t.Run("sorts by creation time", func(t *testing.T) {
		t.Parallel()
		first := id.NewShortID()
		time.Sleep(2 * time.Millisecond)
		second := id.NewShortID()
		assert.Less(t, first, second)
	})
}
