package middlewares

import (
	"net/http"

	"github.com/albertogferrario/ferro/internal"
)

// AuthConfig configures the session auth guard.
type AuthConfig struct {
	// RedirectTo, when set, sends unauthenticated browsers there with a
	// 303 instead of returning 401.
	RedirectTo string
}

// AuthOption configures AuthConfig.
type AuthOption func(*AuthConfig)

// WithAuthRedirect redirects unauthenticated requests instead of
// returning 401. Typical for HTML apps with a login page.
func WithAuthRedirect(url string) AuthOption {
	return func(cfg *AuthConfig) {
		cfg.RedirectTo = url
	}
}

// RequireAuth returns middleware that rejects requests without an
// authenticated session. It never creates a session for anonymous
// visitors.
func RequireAuth(opts ...AuthOption) internal.Middleware {
	cfg := &AuthConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			if c.IsAuthenticated() {
				return next(c)
			}
			if cfg.RedirectTo != "" {
				return c.Redirect(http.StatusSeeOther, cfg.RedirectTo)
			}
			return internal.ErrUnauthorized("authentication required")
		}
	}
}

// RequireGuest returns middleware that rejects authenticated sessions,
// for login and signup pages.
func RequireGuest(redirectTo string) internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			if !c.IsAuthenticated() {
				return next(c)
			}
			if redirectTo != "" {
				return c.Redirect(http.StatusSeeOther, redirectTo)
			}
			return internal.ErrForbidden("already authenticated")
		}
	}
}
