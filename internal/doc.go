// Package internal holds the core types behind the ferro framework.
//
// It is not meant to be imported directly; import
// "github.com/albertogferrario/ferro", which re-exports the public API.
//
// # Core types
//
//   - App: routing, middleware, sessions, background work, realtime,
//     and graceful shutdown in one immutable unit
//   - Context: per-request access to the request, response, session,
//     cookies, queue, broadcaster, storage, and logger
//   - Router: the surface handlers declare routes on
//   - Handler, HandlerFunc, Middleware, ErrorHandler: the handler model
//
// # Context as context.Context
//
// Context embeds context.Context by delegating to the request context,
// so it passes straight into store and client calls:
//
//	func (h *Users) show(c ferro.Context) error {
//	    user, err := h.store.Find(c, c.Param("id"))
//	    if err != nil {
//	        return err
//	    }
//	    return c.JSON(http.StatusOK, user)
//	}
//
// # Application structure
//
// Apps are built once with New and options; routes are fixed after:
//
//	app := ferro.New(
//	    ferro.WithLogger("web"),
//	    ferro.WithHandlers(authHandler, pageHandler),
//	    ferro.WithHealthChecks(ferro.WithReadinessCheck("db", dbCheck)),
//	)
//	err := app.Run(":8080")
//
// Handlers receive dependencies through constructors, not through the
// context; everything an app uses is visible in main.go.
//
// # Sessions and identity
//
// With WithSession configured, sessions load lazily and dirty sessions
// persist right before the response goes out. Auth binds a user and
// rotates the token; UserID and IsAuthenticated read the session
// without ever creating one.
//
// # Errors
//
// Handlers return errors; the app's ErrorHandler renders them. The
// built-in fallback renders HTTPError values as JSON with the status,
// message, and request ID.
//
// # Multi-domain serving
//
// Run composes several apps behind host patterns:
//
//	err := ferro.Run(
//	    ferro.Domain("api.example.com", apiApp),
//	    ferro.Domain("*.example.com", tenantApp),
//	    ferro.Address(":8080"),
//	)
package internal
