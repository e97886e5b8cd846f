package internal

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseWriterDefaults(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	w := NewResponseWriter(rec)

	assert.Equal(t, http.StatusOK, w.Status())
	assert.False(t, w.Written())
	assert.Zero(t, w.Size())
}

func TestResponseWriterWriteHeader(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	w := NewResponseWriter(rec)

	w.WriteHeader(http.StatusCreated)
	assert.Equal(t, http.StatusCreated, w.Status())
	assert.True(t, w.Written())

	// Duplicate calls must not change the recorded status.
	w.WriteHeader(http.StatusTeapot)
	assert.Equal(t, http.StatusCreated, w.Status())
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestResponseWriterImplicitHeader(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	w := NewResponseWriter(rec)

	n, err := w.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, int64(5), w.Size())
	assert.Equal(t, http.StatusOK, w.Status())
	assert.True(t, w.Written())

	_, err = w.Write([]byte(" world"))
	require.NoError(t, err)
	assert.Equal(t, int64(11), w.Size())
	assert.Equal(t, "hello world", rec.Body.String())
}

func TestResponseWriterBeforeWriteHooks(t *testing.T) {
	t.Parallel()

	t.Run("hooks run once before the header", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		w := NewResponseWriter(rec)

		var calls []string
		w.OnBeforeWrite(func() {
			calls = append(calls, "first")
			// Headers set here must make it into the response.
			w.Header().Set("X-Hooked", "yes")
		})
		w.OnBeforeWrite(func() { calls = append(calls, "second") })

		w.WriteHeader(http.StatusAccepted)
		_, err := w.Write([]byte("body"))
		require.NoError(t, err)
		w.WriteHeader(http.StatusTeapot)

		assert.Equal(t, []string{"first", "second"}, calls)
		assert.Equal(t, "yes", rec.Header().Get("X-Hooked"))
		assert.Equal(t, http.StatusAccepted, rec.Code)
	})

	t.Run("hooks run on implicit header flush", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		w := NewResponseWriter(rec)

		ran := false
		w.OnBeforeWrite(func() { ran = true })

		_, err := w.Write([]byte("x"))
		require.NoError(t, err)
		assert.True(t, ran)
	})
}

func TestResponseWriterUnwrap(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	w := NewResponseWriter(rec)
	assert.Same(t, http.ResponseWriter(rec), w.Unwrap())
}
