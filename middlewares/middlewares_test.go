package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/albertogferrario/ferro/internal"
	"github.com/albertogferrario/ferro/pkg/cookie"
	"github.com/albertogferrario/ferro/pkg/session"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// routesFunc lets tests declare routes inline.
type routesFunc func(internal.Router)

func (f routesFunc) Routes(r internal.Router) { f(r) }

// newApp builds an app with the given middleware chain and routes.
func newApp(t *testing.T, mw []internal.Middleware, routes func(internal.Router), extra ...internal.Option) *internal.App {
	t.Helper()
	opts := []internal.Option{
		internal.WithCookieOptions(cookie.WithSecret(testSecret)),
		internal.WithMiddleware(mw...),
		internal.WithHandlers(routesFunc(routes)),
	}
	return internal.New(append(opts, extra...)...)
}

// newSessionApp is newApp plus an in-memory session store.
func newSessionApp(t *testing.T, mw []internal.Middleware, routes func(internal.Router)) *internal.App {
	t.Helper()
	return newApp(t, mw, routes, internal.WithSession(session.NewMemoryStore()))
}

func doRequest(app *internal.App, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)
	return rec
}
