package internal

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albertogferrario/ferro/pkg/broadcast"
	"github.com/albertogferrario/ferro/pkg/queue"
	"github.com/albertogferrario/ferro/pkg/storage"
)

func TestContextResponses(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, WithHandlers(routesFunc(func(r Router) {
		r.GET("/json", func(c Context) error {
			return c.JSON(http.StatusOK, map[string]int{"n": 42})
		})
		r.GET("/text", func(c Context) error {
			return c.String(http.StatusAccepted, "hello")
		})
		r.GET("/empty", func(c Context) error {
			return c.NoContent(http.StatusNoContent)
		})
		r.GET("/away", func(c Context) error {
			return c.Redirect(http.StatusSeeOther, "/json")
		})
	})))

	t.Run("json", func(t *testing.T) {
		rec := doRequest(app, httptest.NewRequest(http.MethodGet, "/json", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"n":42}`, rec.Body.String())
	})

	t.Run("string", func(t *testing.T) {
		rec := doRequest(app, httptest.NewRequest(http.MethodGet, "/text", nil))
		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.Equal(t, "hello", rec.Body.String())
	})

	t.Run("no content", func(t *testing.T) {
		rec := doRequest(app, httptest.NewRequest(http.MethodGet, "/empty", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("redirect", func(t *testing.T) {
		rec := doRequest(app, httptest.NewRequest(http.MethodGet, "/away", nil))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/json", rec.Header().Get("Location"))
	})
}

func TestContextParams(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, WithHandlers(routesFunc(func(r Router) {
		r.GET("/users/{id}", func(c Context) error {
			return c.JSON(http.StatusOK, map[string]any{
				"id":    c.Param("id"),
				"typed": Param[int](c, "id"),
				"page":  QueryDefault(c, "page", 1),
				"sort":  c.QueryDefault("sort", "name"),
			})
		})
	})))

	rec := doRequest(app, httptest.NewRequest(http.MethodGet, "/users/42?page=3", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"42","typed":42,"page":3,"sort":"name"}`, rec.Body.String())
}

type signupForm struct {
	Name  string `form:"name" json:"name" sanitize:"trim" validate:"required"`
	Email string `form:"email" json:"email" sanitize:"trim,lower" validate:"required,email"`
}

func TestContextBind(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, WithHandlers(routesFunc(func(r Router) {
		r.POST("/signup", func(c Context) error {
			var form signupForm
			verr, err := c.Bind(&form)
			if err != nil {
				return ErrBadRequest("malformed input", WithError(err))
			}
			if len(verr) > 0 {
				return c.JSON(http.StatusUnprocessableEntity, map[string]any{"errors": verr})
			}
			return c.JSON(http.StatusOK, form)
		})
	})))

	t.Run("form body sanitized and validated", func(t *testing.T) {
		t.Parallel()

		body := strings.NewReader("name=Ada&email=++ADA@EXAMPLE.COM++")
		req := httptest.NewRequest(http.MethodPost, "/signup", body)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		rec := doRequest(app, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"name":"Ada","email":"ada@example.com"}`, rec.Body.String())
	})

	t.Run("json body by content type", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/signup",
			strings.NewReader(`{"name":"Ada","email":"ada@example.com"}`))
		req.Header.Set("Content-Type", "application/json")

		rec := doRequest(app, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("validation failures are data, not errors", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader("name=&email=bogus"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		rec := doRequest(app, req)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "email")
	})
}

func TestContextCookies(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, WithHandlers(routesFunc(func(r Router) {
		r.GET("/set", func(c Context) error {
			c.SetCookie("plain", "p", 60)
			if err := c.SetCookieSigned("signed", "s", 60); err != nil {
				return err
			}
			if err := c.SetCookieEncrypted("secret", "top", 60); err != nil {
				return err
			}
			return c.NoContent(http.StatusOK)
		})
		r.GET("/read", func(c Context) error {
			plain, _ := c.Cookie("plain")
			signed, _ := c.CookieSigned("signed")
			secret, _ := c.CookieEncrypted("secret")
			return c.JSON(http.StatusOK, map[string]string{
				"plain": plain, "signed": signed, "secret": secret,
			})
		})
	})))

	rec := doRequest(app, httptest.NewRequest(http.MethodGet, "/set", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 3)

	req := httptest.NewRequest(http.MethodGet, "/read", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec = doRequest(app, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"plain":"p","signed":"s","secret":"top"}`, rec.Body.String())
}

func TestContextFlash(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, WithHandlers(routesFunc(func(r Router) {
		r.GET("/put", func(c Context) error {
			if err := c.SetFlash("notice", "saved"); err != nil {
				return err
			}
			return c.NoContent(http.StatusOK)
		})
		r.GET("/pop", func(c Context) error {
			var msg string
			if err := c.Flash("notice", &msg); err != nil {
				return err
			}
			return c.String(http.StatusOK, msg)
		})
	})))

	rec := doRequest(app, httptest.NewRequest(http.MethodGet, "/put", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/pop", nil)
	for _, ck := range rec.Result().Cookies() {
		req.AddCookie(ck)
	}
	rec = doRequest(app, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "saved", rec.Body.String())
}

func TestContextRequestID(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, WithHandlers(routesFunc(func(r Router) {
		r.GET("/id", func(c Context) error {
			c.Set(RequestIDKey{}, "req-123")
			return c.String(http.StatusOK, c.RequestID())
		})
		r.GET("/none", func(c Context) error {
			return c.String(http.StatusOK, c.RequestID())
		})
	})))

	rec := doRequest(app, httptest.NewRequest(http.MethodGet, "/id", nil))
	assert.Equal(t, "req-123", rec.Body.String())

	rec = doRequest(app, httptest.NewRequest(http.MethodGet, "/none", nil))
	assert.Empty(t, rec.Body.String())
}

// renderFunc adapts a function to the Renderer interface.
type renderFunc func(ctx context.Context, w io.Writer) error

func (f renderFunc) Render(ctx context.Context, w io.Writer) error { return f(ctx, w) }

func TestContextRender(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, WithHandlers(routesFunc(func(r Router) {
		r.GET("/page", func(c Context) error {
			return c.Render(http.StatusOK, renderFunc(func(ctx context.Context, w io.Writer) error {
				_, err := io.WriteString(w, "<h1>hi</h1>")
				return err
			}))
		})
	})))

	rec := doRequest(app, httptest.NewRequest(http.MethodGet, "/page", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "<h1>hi</h1>", rec.Body.String())
}

func TestContextNotConfiguredFeatures(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, WithHandlers(routesFunc(func(r Router) {
		r.GET("/features", func(c Context) error {
			assert.ErrorIs(t, c.Enqueue("task", nil), queue.ErrNotConfigured)
			assert.ErrorIs(t, c.Broadcast("ch", "ev", nil), broadcast.ErrNotConfigured)
			_, err := c.Storage()
			assert.ErrorIs(t, err, storage.ErrNotConfigured)
			return c.NoContent(http.StatusOK)
		})
	})))

	rec := doRequest(app, httptest.NewRequest(http.MethodGet, "/features", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestContextDomain(t *testing.T) {
	t.Parallel()

	app := newTestApp(t,
		WithBaseDomain("example.com"),
		WithHandlers(routesFunc(func(r Router) {
			r.GET("/host", func(c Context) error {
				return c.JSON(http.StatusOK, map[string]string{
					"domain":    c.Domain(),
					"subdomain": c.Subdomain(),
				})
			})
		})),
	)

	req := httptest.NewRequest(http.MethodGet, "/host", nil)
	req.Host = "Tenant.Example.com:8443"
	rec := doRequest(app, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"domain":"tenant.example.com","subdomain":"tenant"}`, rec.Body.String())
}
