// Package middlewares provides HTTP middleware for ferro applications.
//
// # Request ID
//
// RequestID assigns a unique ID to each request, reusing upstream
// tracing headers when present:
//
//	app := ferro.New(
//	    ferro.WithLogger("api", middlewares.RequestIDExtractor()),
//	    ferro.WithMiddleware(middlewares.RequestID()),
//	)
//
// # Recover
//
// Recover converts panics into a typed PanicError the error handler
// can render:
//
//	ferro.WithErrorHandler(func(c ferro.Context, err error) error {
//	    if middlewares.IsPanicError(err) {
//	        return ferro.ErrInternal("internal server error")
//	    }
//	    return err
//	})
//
// # Timeout
//
// Timeout enforces a per-request deadline and returns a typed
// TimeoutError. The handler goroutine keeps running after the deadline;
// watch GetTimeoutContext(c).Done() in long operations.
//
// # CORS
//
// CORS answers preflight requests and adds allow headers:
//
//	middlewares.CORS(
//	    middlewares.WithAllowOrigins("https://app.example.com"),
//	    middlewares.WithAllowCredentials(),
//	)
//
// # Auth guards
//
// RequireAuth blocks anonymous requests; RequireGuest blocks
// authenticated ones. Both rely on the app's session support. JWT
// verifies bearer tokens for API routes.
//
// # Ordering
//
// Apply in this order for best results:
//
//	ferro.WithMiddleware(
//	    middlewares.CORS(),
//	    middlewares.RequestID(),
//	    middlewares.Recover(),
//	    middlewares.Timeout(5*time.Second),
//	)
package middlewares
