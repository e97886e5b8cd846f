// Package ferro is a batteries-included web framework for building
// full-stack Go applications: routing, sessions, background tasks,
// realtime broadcasting, file storage, and transactional mail behind
// one options-driven App.
//
// # Quick start
//
//	package main
//
//	import (
//	    "net/http"
//
//	    "github.com/albertogferrario/ferro"
//	)
//
//	type pages struct{}
//
//	func (pages) Routes(r ferro.Router) {
//	    r.GET("/", func(c ferro.Context) error {
//	        return c.String(http.StatusOK, "hello")
//	    })
//	}
//
//	func main() {
//	    app := ferro.New(
//	        ferro.WithLogger("web"),
//	        ferro.WithHandlers(pages{}),
//	        ferro.WithHealthChecks(),
//	    )
//	    if err := app.Run(":8080"); err != nil {
//	        panic(err)
//	    }
//	}
//
// # Design
//
// Apps are immutable after New: every capability arrives through a
// WithX option and handlers receive their dependencies through
// constructors. Handlers return errors instead of writing error
// responses; the app's error handler renders them.
//
// Sessions, the task queue, the broadcaster, and file storage are all
// reachable from the request Context once the matching option is
// configured; without it, the helpers return typed ErrNotConfigured
// sentinels.
//
// Subpackages under pkg/ (cookie, session, queue, broadcast, storage,
// mailer, and friends) stand alone and can be used without the App.
package ferro
