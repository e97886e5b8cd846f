package internal

// Handler registers a group of related routes on a router. Feature
// packages implement it so the app can mount them with Route or Mount.
//
//	type AuthHandler struct {
//	    users *repository.Users
//	}
//
//	func (h *AuthHandler) Routes(r ferro.Router) {
//	    r.GET("/login", h.showLogin)
//	    r.POST("/login", h.login)
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc handles one request. A non-nil error is passed to the
// app's error handler, which decides the response.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc. It can short-circuit by returning
// before calling next, or decorate the context and response around it.
//
//	func RequireAuth(next ferro.HandlerFunc) ferro.HandlerFunc {
//	    return func(c ferro.Context) error {
//	        if !c.IsAuthenticated() {
//	            return c.Redirect(http.StatusSeeOther, "/login")
//	        }
//	        return next(c)
//	    }
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler converts a handler error into a response. Returning a
// non-nil error falls through to the built-in JSON error response.
type ErrorHandler func(c Context, err error) error
