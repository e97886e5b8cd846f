package internal

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runExtractor sends req through a handler that applies ext and reports
// the result. The route pattern is POST /probe/{id}.
func runExtractor(t *testing.T, ext Extractor, req *http.Request) (string, bool) {
	t.Helper()

	var (
		value string
		found bool
	)
	app := newTestApp(t, WithHandlers(routesFunc(func(r Router) {
		r.POST("/probe/{id}", func(c Context) error {
			value, found = ext.Extract(c)
			return c.NoContent(http.StatusOK)
		})
	})))

	rec := doRequest(app, req)
	require.Equal(t, http.StatusOK, rec.Code)
	return value, found
}

func probeRequest() *http.Request {
	return httptest.NewRequest(http.MethodPost, "/probe/p42", nil)
}

func TestExtractorSources(t *testing.T) {
	t.Parallel()

	t.Run("header", func(t *testing.T) {
		t.Parallel()

		req := probeRequest()
		req.Header.Set("X-Api-Key", "key-1")
		v, ok := runExtractor(t, NewExtractor(FromHeader("X-Api-Key")), req)
		assert.True(t, ok)
		assert.Equal(t, "key-1", v)
	})

	t.Run("query", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/probe/p42?token=q-token", nil)
		v, ok := runExtractor(t, NewExtractor(FromQuery("token")), req)
		assert.True(t, ok)
		assert.Equal(t, "q-token", v)
	})

	t.Run("cookie", func(t *testing.T) {
		t.Parallel()

		req := probeRequest()
		req.AddCookie(&http.Cookie{Name: "sid", Value: "c-token"})
		v, ok := runExtractor(t, NewExtractor(FromCookie("sid")), req)
		assert.True(t, ok)
		assert.Equal(t, "c-token", v)
	})

	t.Run("url param", func(t *testing.T) {
		t.Parallel()

		v, ok := runExtractor(t, NewExtractor(FromParam("id")), probeRequest())
		assert.True(t, ok)
		assert.Equal(t, "p42", v)
	})

	t.Run("form field", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/probe/p42",
			strings.NewReader("token=f-token"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		v, ok := runExtractor(t, NewExtractor(FromForm("token")), req)
		assert.True(t, ok)
		assert.Equal(t, "f-token", v)
	})

	t.Run("miss", func(t *testing.T) {
		t.Parallel()

		v, ok := runExtractor(t, NewExtractor(FromHeader("X-Absent")), probeRequest())
		assert.False(t, ok)
		assert.Empty(t, v)
	})
}

func TestExtractorBearerToken(t *testing.T) {
	t.Parallel()

	t.Run("standard scheme", func(t *testing.T) {
		t.Parallel()

		req := probeRequest()
		req.Header.Set("Authorization", "Bearer abc.def.ghi")
		v, ok := runExtractor(t, NewExtractor(FromBearerToken()), req)
		assert.True(t, ok)
		assert.Equal(t, "abc.def.ghi", v)
	})

	t.Run("scheme is case insensitive", func(t *testing.T) {
		t.Parallel()

		req := probeRequest()
		req.Header.Set("Authorization", "bearer lower")
		v, ok := runExtractor(t, NewExtractor(FromBearerToken()), req)
		assert.True(t, ok)
		assert.Equal(t, "lower", v)
	})

	t.Run("other schemes are rejected", func(t *testing.T) {
		t.Parallel()

		req := probeRequest()
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		_, ok := runExtractor(t, NewExtractor(FromBearerToken()), req)
		assert.False(t, ok)
	})
}

func TestExtractorChain(t *testing.T) {
	t.Parallel()

	ext := NewExtractor(
		FromBearerToken(),
		FromHeader("X-Api-Key"),
		FromQuery("token"),
	)

	t.Run("first hit wins", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/probe/p42?token=from-query", nil)
		req.Header.Set("Authorization", "Bearer from-auth")
		req.Header.Set("X-Api-Key", "from-header")
		v, ok := runExtractor(t, ext, req)
		assert.True(t, ok)
		assert.Equal(t, "from-auth", v)
	})

	t.Run("falls through to later sources", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/probe/p42?token=from-query", nil)
		v, ok := runExtractor(t, ext, req)
		assert.True(t, ok)
		assert.Equal(t, "from-query", v)
	})

	t.Run("empty chain misses", func(t *testing.T) {
		t.Parallel()

		_, ok := runExtractor(t, NewExtractor(), probeRequest())
		assert.False(t, ok)
	})
}
