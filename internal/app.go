package internal

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/albertogferrario/ferro/pkg/broadcast"
	"github.com/albertogferrario/ferro/pkg/cookie"
	"github.com/albertogferrario/ferro/pkg/health"
	"github.com/albertogferrario/ferro/pkg/logger"
	"github.com/albertogferrario/ferro/pkg/mailer"
	"github.com/albertogferrario/ferro/pkg/session"
	"github.com/albertogferrario/ferro/pkg/storage"
)

// Server timeouts are fixed and opinionated.
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

// App wires routing, middleware, sessions, background work, and
// realtime into one unit. It is immutable after New: all configuration
// happens through options.
type App struct {
	router                  chi.Router
	errorHandler            ErrorHandler
	notFoundHandler         HandlerFunc
	methodNotAllowedHandler HandlerFunc
	healthConfig            *healthConfig
	mcpConfig               *mcpConfig
	logger                  *slog.Logger
	cookies                 *cookie.Jar
	sessionManager          *SessionManager
	sessionStore            session.Store
	sessionOpts             []SessionOption
	jobs                    JobEnqueuer
	queueWorker             *QueueManager
	broadcaster             *broadcast.Broadcaster
	storage                 storage.Storage
	mailer                  *mailer.Mailer
	name                    string
	env                     string
	baseDomain              string
	startedAt               time.Time
	middlewares             []Middleware
	handlers                []Handler
	staticRoutes            []staticRoute
	routes                  []RouteInfo
}

// staticRoute is a static file handler and its mount pattern.
type staticRoute struct {
	handler http.Handler
	pattern string
}

// RouteInfo describes one registered route for introspection.
type RouteInfo struct {
	Method  string `json:"method"`
	Pattern string `json:"pattern"`
}

// New builds an app from options. Routes, middleware, and mounts are
// fixed once New returns.
//
//	app := ferro.New(
//	    ferro.WithLogger("web"),
//	    ferro.WithHandlers(
//	        handlers.NewAuth(store),
//	        handlers.NewPages(store),
//	    ),
//	)
func New(opts ...Option) *App {
	a := &App{
		router:    chi.NewRouter(),
		logger:    logger.NewDiscard(),
		cookies:   cookie.New(),
		startedAt: time.Now(),
	}

	for _, opt := range opts {
		opt(a)
	}

	// Built after the options loop so the session manager sees the
	// final cookie jar and logger regardless of option order.
	if a.sessionStore != nil {
		a.sessionManager = NewSessionManager(a.sessionStore, a.cookies, a.sessionOpts...)
		a.sessionManager.SetLogger(a.logger)
	}

	a.setupRoutes()
	return a
}

// Router exposes the chi router for multi-domain composition.
func (a *App) Router() chi.Router {
	return a.router
}

// QueueWorker returns the configured worker, or nil. Multi-domain Run
// uses it to collect workers across apps.
func (a *App) QueueWorker() *QueueManager {
	return a.queueWorker
}

// Broadcaster returns the configured broadcaster, or nil.
func (a *App) Broadcaster() *broadcast.Broadcaster {
	return a.broadcaster
}

// Mailer returns the configured mailer, or nil.
func (a *App) Mailer() *mailer.Mailer {
	return a.mailer
}

// Routes lists every registered route.
func (a *App) Routes() []RouteInfo {
	out := make([]RouteInfo, len(a.routes))
	copy(out, a.routes)
	return out
}

// recordRoute remembers a registration for introspection. Only called
// during New, so no locking.
func (a *App) recordRoute(method, pattern string) {
	a.routes = append(a.routes, RouteInfo{Method: method, Pattern: pattern})
}

// Run serves the app on addr and blocks until a signal or fatal error.
// Queue workers and the broadcaster, when configured, start before the
// listener accepts and stop during graceful shutdown.
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := buildRunConfig(opts...)

	startupHooks := cfg.startupHooks
	shutdownHooks := cfg.shutdownHooks
	startupHooks, shutdownHooks = a.lifecycleHooks(startupHooks, shutdownHooks)

	return runServer(runtimeConfig{
		handler:         a.router,
		address:         addr,
		logger:          cfg.logger,
		shutdownTimeout: cfg.shutdownTimeout,
		startupHooks:    startupHooks,
		shutdownHooks:   shutdownHooks,
		baseCtx:         cfg.baseCtx,
	})
}

// lifecycleHooks prepends the app's own startup hooks and appends its
// shutdown hooks around the user-provided ones.
func (a *App) lifecycleHooks(startup, shutdown []func(context.Context) error) ([]func(context.Context) error, []func(context.Context) error) {
	if a.queueWorker != nil {
		startup = append([]func(context.Context) error{a.queueWorker.Manager().StartFunc()}, startup...)
		shutdown = append(shutdown, a.queueWorker.Shutdown())
	}
	if a.broadcaster != nil {
		b := a.broadcaster
		startup = append([]func(context.Context) error{b.Start}, startup...)
		shutdown = append(shutdown, b.Shutdown())
	}
	return startup, shutdown
}

// setupRoutes applies middleware and registers every handler, mount,
// and built-in endpoint on the chi router.
func (a *App) setupRoutes() {
	if a.notFoundHandler != nil {
		a.router.NotFound(a.wrapHandler(a.notFoundHandler))
	}
	if a.methodNotAllowedHandler != nil {
		a.router.MethodNotAllowed(a.wrapHandler(a.methodNotAllowedHandler))
	}

	for _, mw := range a.middlewares {
		a.router.Use(a.adaptMiddleware(mw))
	}

	for _, sr := range a.staticRoutes {
		a.router.Mount(sr.pattern, sr.handler)
		a.recordRoute("*", sr.pattern+"/*")
	}

	if a.healthConfig != nil {
		a.router.Get(a.healthConfig.livenessPath, health.LivenessHandler())
		a.router.Get(a.healthConfig.readinessPath, health.ReadinessHandler(a.healthConfig.checks))
		a.recordRoute(http.MethodGet, a.healthConfig.livenessPath)
		a.recordRoute(http.MethodGet, a.healthConfig.readinessPath)
	}

	r := &routerAdapter{router: a.router, app: a}
	for _, h := range a.handlers {
		h.Routes(r)
	}

	// MCP mounts last so list_routes sees the full table.
	if a.mcpConfig != nil {
		a.router.Mount(a.mcpConfig.path, newMCPHandler(a, a.mcpConfig))
		a.recordRoute("*", a.mcpConfig.path+"/*")
	}
}

// wrapHandler adapts a HandlerFunc for chi's NotFound/MethodNotAllowed
// hooks.
func (a *App) wrapHandler(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := newContext(w, r, a)
		if err := h(c); err != nil {
			a.handleError(c, err)
		}
	}
}

// handleError routes a handler error through the configured error
// handler, with a JSON fallback when none is set or the handler itself
// fails.
func (a *App) handleError(c Context, err error) {
	if c.Written() {
		return
	}
	if a.errorHandler != nil {
		if a.errorHandler(c, err) == nil {
			return
		}
	}
	defaultErrorResponse(c, err)
}

// defaultErrorResponse renders an HTTPError as JSON, or a bare 500 for
// everything else.
func defaultErrorResponse(c Context, err error) {
	httpErr := AsHTTPError(err)
	if httpErr == nil {
		httpErr = ErrInternal("internal server error", WithError(err))
	}
	if httpErr.RequestID == "" {
		httpErr.RequestID = c.RequestID()
	}

	c.LogError("request failed",
		slog.Int("status", httpErr.Code),
		slog.String("message", httpErr.Message),
		slog.Any("error", err),
	)

	body := map[string]any{
		"error":  httpErr.Message,
		"status": httpErr.Code,
	}
	if httpErr.ErrorCode != "" {
		body["code"] = httpErr.ErrorCode
	}
	if httpErr.Detail != "" {
		body["detail"] = httpErr.Detail
	}
	if httpErr.RequestID != "" {
		body["request_id"] = httpErr.RequestID
	}
	_ = c.JSON(httpErr.Code, body)
}

// healthConfig holds the health endpoint setup.
type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
}

const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// HealthOption configures the health endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath overrides the liveness endpoint path.
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath overrides the readiness endpoint path.
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named readiness check. Checks run in
// parallel on every probe.
//
//	ferro.WithReadinessCheck("db", db.Healthcheck(pool))
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if c.checks == nil {
			c.checks = make(health.Checks)
		}
		c.checks[name] = fn
	}
}
