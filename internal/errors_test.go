package internal

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPError(t *testing.T) {
	t.Parallel()

	t.Run("message only", func(t *testing.T) {
		t.Parallel()

		err := NewHTTPError(http.StatusBadRequest, "invalid payload")
		assert.Equal(t, "invalid payload", err.Error())
		assert.Equal(t, http.StatusBadRequest, err.StatusCode())
		assert.Equal(t, "Bad Request", err.StatusText())
		assert.NoError(t, err.Unwrap())
	})

	t.Run("wrapped cause", func(t *testing.T) {
		t.Parallel()

		cause := errors.New("row not found")
		err := ErrNotFound("user not found", WithError(cause))
		assert.Equal(t, "user not found: row not found", err.Error())
		assert.ErrorIs(t, err, cause)
	})

	t.Run("options", func(t *testing.T) {
		t.Parallel()

		err := ErrUnprocessable("invalid state",
			WithDetail("order already shipped"),
			WithErrorCode("order_shipped"),
		)
		assert.Equal(t, "order already shipped", err.Detail)
		assert.Equal(t, "order_shipped", err.ErrorCode)
		assert.Equal(t, http.StatusUnprocessableEntity, err.Code)
	})
}

func TestHTTPErrorConstructors(t *testing.T) {
	t.Parallel()

	cases := map[int]*HTTPError{
		http.StatusBadRequest:          ErrBadRequest("m"),
		http.StatusUnauthorized:        ErrUnauthorized("m"),
		http.StatusForbidden:           ErrForbidden("m"),
		http.StatusNotFound:            ErrNotFound("m"),
		http.StatusConflict:            ErrConflict("m"),
		http.StatusUnprocessableEntity: ErrUnprocessable("m"),
		http.StatusTooManyRequests:     ErrTooManyRequests("m"),
		http.StatusInternalServerError: ErrInternal("m"),
		http.StatusServiceUnavailable:  ErrServiceUnavailable("m"),
	}
	for want, err := range cases {
		assert.Equal(t, want, err.Code)
	}
}

func TestAsHTTPError(t *testing.T) {
	t.Parallel()

	t.Run("direct", func(t *testing.T) {
		t.Parallel()

		err := ErrForbidden("nope")
		got := AsHTTPError(err)
		require.NotNil(t, got)
		assert.Same(t, err, got)
		assert.True(t, IsHTTPError(err))
	})

	t.Run("wrapped deeper in the chain", func(t *testing.T) {
		t.Parallel()

		inner := ErrConflict("duplicate slug")
		err := fmt.Errorf("creating page: %w", inner)
		got := AsHTTPError(err)
		require.NotNil(t, got)
		assert.Equal(t, http.StatusConflict, got.Code)
	})

	t.Run("plain errors", func(t *testing.T) {
		t.Parallel()

		assert.Nil(t, AsHTTPError(errors.New("plain")))
		assert.False(t, IsHTTPError(errors.New("plain")))
		assert.Nil(t, AsHTTPError(nil))
	})
}
