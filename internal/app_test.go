package internal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albertogferrario/ferro/pkg/cookie"
)

const testCookieSecret = "0123456789abcdef0123456789abcdef"

// routesFunc lets tests declare routes inline.
type routesFunc func(Router)

func (f routesFunc) Routes(r Router) { f(r) }

func newTestApp(t *testing.T, opts ...Option) *App {
	t.Helper()
	base := []Option{
		WithCookieOptions(cookie.WithSecret(testCookieSecret)),
	}
	return New(append(base, opts...)...)
}

func doRequest(app *App, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)
	return rec
}

func TestAppRouting(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, WithHandlers(routesFunc(func(r Router) {
		r.GET("/ping", func(c Context) error {
			return c.String(http.StatusOK, "pong")
		})
		r.Handle("REPORT", "/custom", func(c Context) error {
			return c.NoContent(http.StatusAccepted)
		})
		r.Route("/api", func(r Router) {
			r.POST("/users", func(c Context) error {
				return c.JSON(http.StatusCreated, map[string]string{"id": "1"})
			})
		})
	})))

	t.Run("simple route", func(t *testing.T) {
		rec := doRequest(app, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "pong", rec.Body.String())
	})

	t.Run("arbitrary method", func(t *testing.T) {
		rec := doRequest(app, httptest.NewRequest("REPORT", "/custom", nil))
		assert.Equal(t, http.StatusAccepted, rec.Code)
	})

	t.Run("nested route", func(t *testing.T) {
		rec := doRequest(app, httptest.NewRequest(http.MethodPost, "/api/users", nil))
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.JSONEq(t, `{"id":"1"}`, rec.Body.String())
	})

	t.Run("routes are recorded with full patterns", func(t *testing.T) {
		routes := app.Routes()
		assert.Contains(t, routes, RouteInfo{Method: "GET", Pattern: "/ping"})
		assert.Contains(t, routes, RouteInfo{Method: "REPORT", Pattern: "/custom"})
		assert.Contains(t, routes, RouteInfo{Method: "POST", Pattern: "/api/users"})
	})
}

func TestAppMiddleware(t *testing.T) {
	t.Parallel()

	var order []string
	app := newTestApp(t,
		WithMiddleware(func(next HandlerFunc) HandlerFunc {
			return func(c Context) error {
				order = append(order, "global")
				return next(c)
			}
		}),
		WithHandlers(routesFunc(func(r Router) {
			r.GET("/x", func(c Context) error {
				order = append(order, "handler")
				return c.NoContent(http.StatusOK)
			}, func(next HandlerFunc) HandlerFunc {
				return func(c Context) error {
					order = append(order, "route")
					return next(c)
				}
			})
		})),
	)

	rec := doRequest(app, httptest.NewRequest(http.MethodGet, "/x", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"global", "route", "handler"}, order)
}

func TestAppErrorHandling(t *testing.T) {
	t.Parallel()

	t.Run("default renders HTTPError as JSON", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t, WithHandlers(routesFunc(func(r Router) {
			r.GET("/missing", func(c Context) error {
				return ErrNotFound("user not found", WithErrorCode("user_missing"))
			})
		})))

		rec := doRequest(app, httptest.NewRequest(http.MethodGet, "/missing", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "user not found")
		assert.Contains(t, rec.Body.String(), "user_missing")
	})

	t.Run("unknown errors become 500", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t, WithHandlers(routesFunc(func(r Router) {
			r.GET("/boom", func(c Context) error {
				return assert.AnError
			})
		})))

		rec := doRequest(app, httptest.NewRequest(http.MethodGet, "/boom", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), assert.AnError.Error(),
			"internal details must not leak to clients")
	})

	t.Run("custom error handler wins", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t,
			WithErrorHandler(func(c Context, err error) error {
				return c.String(http.StatusTeapot, "handled: "+err.Error())
			}),
			WithHandlers(routesFunc(func(r Router) {
				r.GET("/boom", func(c Context) error {
					return assert.AnError
				})
			})),
		)

		rec := doRequest(app, httptest.NewRequest(http.MethodGet, "/boom", nil))
		assert.Equal(t, http.StatusTeapot, rec.Code)
	})

	t.Run("failing custom handler falls back to JSON", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t,
			WithErrorHandler(func(c Context, err error) error {
				return assert.AnError
			}),
			WithHandlers(routesFunc(func(r Router) {
				r.GET("/boom", func(c Context) error {
					return ErrForbidden("nope")
				})
			})),
		)

		rec := doRequest(app, httptest.NewRequest(http.MethodGet, "/boom", nil))
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "nope")
	})
}

func TestAppCustomFallbackHandlers(t *testing.T) {
	t.Parallel()

	app := newTestApp(t,
		WithNotFoundHandler(func(c Context) error {
			return c.String(http.StatusNotFound, "lost")
		}),
		WithMethodNotAllowedHandler(func(c Context) error {
			return c.String(http.StatusMethodNotAllowed, "not like this")
		}),
		WithHandlers(routesFunc(func(r Router) {
			r.GET("/only-get", func(c Context) error {
				return c.NoContent(http.StatusOK)
			})
		})),
	)

	rec := doRequest(app, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "lost", rec.Body.String())

	rec = doRequest(app, httptest.NewRequest(http.MethodPost, "/only-get", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "not like this", rec.Body.String())
}

func TestAppHealthEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("liveness always up", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t, WithHealthChecks())
		rec := doRequest(app, httptest.NewRequest(http.MethodGet, "/health/live", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("readiness reflects checks", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t, WithHealthChecks(
			WithReadinessCheck("failing", func(ctx context.Context) error {
				return assert.AnError
			}),
		))
		rec := doRequest(app, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("custom paths", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t, WithHealthChecks(
			WithLivenessPath("/livez"),
			WithReadinessPath("/readyz"),
		))
		rec := doRequest(app, httptest.NewRequest(http.MethodGet, "/livez", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		rec = doRequest(app, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestAppRunGracefulShutdown(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, WithHandlers(routesFunc(func(r Router) {
		r.GET("/ok", func(c Context) error { return c.NoContent(http.StatusOK) })
	})))

	ctx, cancel := context.WithCancel(context.Background())

	var started, stopped bool
	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Run("127.0.0.1:0",
			WithContext(ctx),
			StartupHook(func(context.Context) error {
				started = true
				return nil
			}),
			ShutdownHook(func(context.Context) error {
				stopped = true
				return nil
			}),
		)
	}()

	cancel()
	err := <-errCh
	require.NoError(t, err)
	assert.True(t, started)
	assert.True(t, stopped)
}

func TestAppRunStartupHookFailure(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	err := app.Run("127.0.0.1:0", StartupHook(func(context.Context) error {
		return assert.AnError
	}))
	require.ErrorIs(t, err, assert.AnError)
}
