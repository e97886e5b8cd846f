package ferro

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/albertogferrario/ferro/internal"
	"github.com/albertogferrario/ferro/pkg/broadcast"
	"github.com/albertogferrario/ferro/pkg/cookie"
	"github.com/albertogferrario/ferro/pkg/health"
	"github.com/albertogferrario/ferro/pkg/logger"
	"github.com/albertogferrario/ferro/pkg/mailer"
	"github.com/albertogferrario/ferro/pkg/queue"
	"github.com/albertogferrario/ferro/pkg/session"
	"github.com/albertogferrario/ferro/pkg/storage"
)

// Type aliases - public API
type (
	// App wires routing, middleware, sessions, background work, and
	// realtime into one unit. Immutable after New.
	App = internal.App

	// Router is the surface handlers declare routes on.
	Router = internal.Router

	// Context provides request/response access and helper methods.
	Context = internal.Context

	// Handler declares routes on a router.
	Handler = internal.Handler

	// HandlerFunc is the signature for route handlers.
	HandlerFunc = internal.HandlerFunc

	// Middleware wraps a HandlerFunc to add cross-cutting concerns.
	Middleware = internal.Middleware

	// ErrorHandler handles errors returned from handlers.
	ErrorHandler = internal.ErrorHandler

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// Renderer renders HTML into a writer; templ components satisfy it.
	Renderer = internal.Renderer

	// ValidationErrors maps field names to validation messages.
	ValidationErrors = internal.ValidationErrors

	// HTTPError is a status-coded error the default error handler
	// renders as JSON.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError at construction.
	HTTPErrorOption = internal.HTTPErrorOption

	// ResponseWriter wraps http.ResponseWriter with write hooks.
	ResponseWriter = internal.ResponseWriter

	// RouteInfo describes one registered route.
	RouteInfo = internal.RouteInfo

	// Extractor pulls a value from a chain of request locations.
	Extractor = internal.Extractor

	// ExtractorSource is a single request location an Extractor tries.
	ExtractorSource = internal.ExtractorSource

	// ContextExtractor adds request-scoped attributes to log entries.
	ContextExtractor = logger.ContextExtractor

	// CookieOption configures the cookie jar.
	CookieOption = cookie.Option

	// SessionOption configures the session manager.
	SessionOption = internal.SessionOption

	// Session is a server-side user session.
	Session = session.Session

	// SessionStore persists sessions.
	SessionStore = session.Store

	// FingerprintMode selects which request attributes bind a session.
	FingerprintMode = internal.FingerprintMode

	// FingerprintStrictness selects the reaction to a mismatch.
	FingerprintStrictness = internal.FingerprintStrictness

	// QueueOption configures the task queue.
	QueueOption = queue.Option

	// EnqueueOption configures a single enqueued task.
	EnqueueOption = queue.EnqueueOption

	// BroadcastOption configures the websocket broadcaster.
	BroadcastOption = broadcast.Option

	// PublishOption configures a single broadcast.
	PublishOption = broadcast.PublishOption
)

// New creates an application. Routes, middleware, and mounts are fixed
// once New returns.
//
//	app := ferro.New(
//	    ferro.WithLogger("web", middlewares.RequestIDExtractor()),
//	    ferro.WithHandlers(
//	        handlers.NewAuth(store),
//	        handlers.NewPages(store),
//	    ),
//	)
//
//	err := app.Run(":8080")
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// Run starts a multi-domain HTTP server and blocks until shutdown. Use
// it to compose several apps under host patterns:
//
//	err := ferro.Run(
//	    ferro.Domain("api.acme.com", api),
//	    ferro.Domain("*.acme.com", tenants),
//	    ferro.Address(":8080"),
//	)
func Run(opts ...RunOption) error {
	return internal.Run(opts...)
}

// App options

// WithAppInfo names the app and its environment for introspection.
func WithAppInfo(name, env string) Option {
	return internal.WithAppInfo(name, env)
}

// WithMiddleware adds global middleware, applied in order.
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

// WithHandlers registers handlers that declare routes.
func WithHandlers(h ...Handler) Option {
	return internal.WithHandlers(h...)
}

// WithStaticFiles mounts a static file handler at the given pattern.
//
//	//go:embed public
//	var assets embed.FS
//
//	ferro.WithStaticFiles("/static/", assets, "public")
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return internal.WithStaticFiles(pattern, fsys, subDir)
}

// WithErrorHandler sets a custom handler for handler errors.
func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

// WithNotFoundHandler sets a custom 404 handler.
func WithNotFoundHandler(h HandlerFunc) Option {
	return internal.WithNotFoundHandler(h)
}

// WithMethodNotAllowedHandler sets a custom 405 handler.
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return internal.WithMethodNotAllowedHandler(h)
}

// WithHealthChecks enables the liveness and readiness endpoints.
//
//	ferro.WithHealthChecks(
//	    ferro.WithReadinessCheck("db", db.Healthcheck(pool)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// WithLogger creates a logger with a component name and optional
// context extractors. The component lands on every entry.
func WithLogger(component string, extractors ...ContextExtractor) Option {
	return internal.WithLogger(component, extractors...)
}

// WithCustomLogger sets a fully custom logger.
func WithCustomLogger(l *slog.Logger) Option {
	return internal.WithCustomLogger(l)
}

// WithBaseDomain configures the base domain so c.Subdomain() works.
func WithBaseDomain(domain string) Option {
	return internal.WithBaseDomain(domain)
}

// WithCookieOptions configures the cookie jar.
//
//	ferro.WithCookieOptions(
//	    ferro.WithCookieSecret(os.Getenv("COOKIE_SECRET")),
//	    ferro.WithCookieSecure(true),
//	)
func WithCookieOptions(opts ...CookieOption) Option {
	return internal.WithCookieOptions(opts...)
}

// WithSession enables server-side sessions. Sessions load lazily and
// dirty sessions persist right before the response goes out.
//
//	ferro.WithSession(session.NewRedisStore(client),
//	    ferro.WithSessionMaxAge(86400*30),
//	)
func WithSession(store SessionStore, opts ...SessionOption) Option {
	return internal.WithSession(store, opts...)
}

// WithQueue enables task enqueueing and worker processing on Redis.
// Workers start with the app and stop during graceful shutdown.
//
//	ferro.WithQueue(client,
//	    ferro.WithTask(tasks.NewSendWelcome(mailer, store)),
//	    ferro.WithScheduledTask(tasks.NewCleanupSessions(store)),
//	)
func WithQueue(client redis.UniversalClient, opts ...QueueOption) Option {
	return internal.WithQueue(client, opts...)
}

// WithQueueEnqueuer enables enqueueing without worker processing, for
// web processes that dispatch to separate workers.
func WithQueueEnqueuer(client redis.UniversalClient, opts ...QueueOption) Option {
	return internal.WithQueueEnqueuer(client, opts...)
}

// WithQueueWorker enables worker processing without enqueueing, for
// dedicated worker processes. c.Enqueue returns queue.ErrNotConfigured.
func WithQueueWorker(client redis.UniversalClient, opts ...QueueOption) Option {
	return internal.WithQueueWorker(client, opts...)
}

// WithBroadcaster mounts the websocket broadcaster. An empty path
// mounts it at "/_ws". The broadcaster starts and stops with the app.
func WithBroadcaster(b *broadcast.Broadcaster, path string) Option {
	return internal.WithBroadcaster(b, path)
}

// WithStorage wires a file storage backend into the context.
func WithStorage(s storage.Storage) Option {
	return internal.WithStorage(s)
}

// WithMailer wires a transactional mailer into the app.
func WithMailer(m *mailer.Mailer) Option {
	return internal.WithMailer(m)
}

// WithMCP mounts the Model Context Protocol endpoint. An empty path
// mounts it at "/_mcp". The endpoint exposes route, task, and queue
// introspection to MCP clients.
func WithMCP(path string) Option {
	return internal.WithMCP(path)
}

// Health check options

// WithLivenessPath overrides the liveness path ("/health/live").
func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

// WithReadinessPath overrides the readiness path ("/health/ready").
func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

// WithReadinessCheck adds a named readiness check. Checks run in
// parallel on every probe.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// Run options

// Address sets the HTTP server address. Defaults to ":8080".
func Address(addr string) RunOption {
	return internal.Address(addr)
}

// Logger sets the server logger. Nil disables logging.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// ShutdownTimeout bounds graceful shutdown, including shutdown hooks.
// Defaults to 30 seconds.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// StartupHook runs fn after the port is bound and before serving. A
// failing hook aborts startup.
func StartupHook(fn func(context.Context) error) RunOption {
	return internal.StartupHook(fn)
}

// ShutdownHook runs fn during graceful shutdown, in registration order.
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// Domain maps a host pattern to an app. Patterns are exact
// ("api.example.com") or wildcard ("*.example.com").
func Domain(pattern string, app *App) RunOption {
	return internal.Domain(pattern, app)
}

// Fallback sets the app for requests that match no domain.
func Fallback(app *App) RunOption {
	return internal.Fallback(app)
}

// WithContext sets the base context for signal handling. Cancel it to
// trigger graceful shutdown programmatically.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

// Errors

// NewHTTPError creates an HTTPError with the given status and message.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}

// WithDetail adds an extended description to an HTTPError.
func WithDetail(detail string) HTTPErrorOption {
	return internal.WithDetail(detail)
}

// WithErrorCode sets a stable application error code.
func WithErrorCode(code string) HTTPErrorOption {
	return internal.WithErrorCode(code)
}

// WithError attaches the underlying cause; it is logged, never rendered.
func WithError(err error) HTTPErrorOption {
	return internal.WithError(err)
}

// Constructors for the common statuses.

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrBadRequest(message, opts...)
}

func ErrUnauthorized(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrUnauthorized(message, opts...)
}

func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrForbidden(message, opts...)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrNotFound(message, opts...)
}

func ErrConflict(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrConflict(message, opts...)
}

func ErrUnprocessable(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrUnprocessable(message, opts...)
}

func ErrTooManyRequests(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrTooManyRequests(message, opts...)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrInternal(message, opts...)
}

func ErrServiceUnavailable(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrServiceUnavailable(message, opts...)
}

// AsHTTPError extracts an HTTPError from err's chain, or nil.
func AsHTTPError(err error) *HTTPError {
	return internal.AsHTTPError(err)
}

// IsHTTPError reports whether err carries an HTTPError.
func IsHTTPError(err error) bool {
	return internal.IsHTTPError(err)
}

// Context helpers

// ContextValue retrieves a typed value from the context, or T's zero
// value.
//
//	type tenantKey struct{}
//
//	tenant := ferro.ContextValue[*Tenant](c, tenantKey{})
func ContextValue[T any](c Context, key any) T {
	return internal.ContextValue[T](c, key)
}

// Param returns a typed URL parameter, or T's zero value when missing
// or unparsable.
//
//	id := ferro.Param[int64](c, "id")
func Param[T internal.Parseable](c Context, name string) T {
	return internal.Param[T](c, name)
}

// Query returns a typed query parameter, or T's zero value.
func Query[T internal.Parseable](c Context, name string) T {
	return internal.Query[T](c, name)
}

// QueryDefault returns a typed query parameter, or def when missing or
// unparsable.
//
//	page := ferro.QueryDefault(c, "page", 1)
func QueryDefault[T internal.Parseable](c Context, name string, def T) T {
	return internal.QueryDefault[T](c, name, def)
}

// Extractors

// NewExtractor builds an extractor that tries sources in order.
func NewExtractor(sources ...ExtractorSource) Extractor {
	return internal.NewExtractor(sources...)
}

func FromHeader(name string) ExtractorSource          { return internal.FromHeader(name) }
func FromQuery(name string) ExtractorSource           { return internal.FromQuery(name) }
func FromCookie(name string) ExtractorSource          { return internal.FromCookie(name) }
func FromCookieSigned(name string) ExtractorSource    { return internal.FromCookieSigned(name) }
func FromCookieEncrypted(name string) ExtractorSource { return internal.FromCookieEncrypted(name) }
func FromParam(name string) ExtractorSource           { return internal.FromParam(name) }
func FromForm(name string) ExtractorSource            { return internal.FromForm(name) }
func FromSession(key string) ExtractorSource          { return internal.FromSession(key) }
func FromBearerToken() ExtractorSource                { return internal.FromBearerToken() }

// Cookie options

// WithCookieSecret sets the secret for signing and encryption. Must be
// at least 32 bytes.
func WithCookieSecret(secret string) CookieOption {
	return cookie.WithSecret(secret)
}

// WithCookieDomain sets the cookie domain.
func WithCookieDomain(domain string) CookieOption {
	return cookie.WithDomain(domain)
}

// WithCookiePath sets the cookie path.
func WithCookiePath(path string) CookieOption {
	return cookie.WithPath(path)
}

// WithCookieSecure sets the Secure flag.
func WithCookieSecure(secure bool) CookieOption {
	return cookie.WithSecure(secure)
}

// WithCookieHTTPOnly sets the HttpOnly flag.
func WithCookieHTTPOnly(httpOnly bool) CookieOption {
	return cookie.WithHTTPOnly(httpOnly)
}

// WithCookieSameSite sets the SameSite attribute.
func WithCookieSameSite(ss http.SameSite) CookieOption {
	return cookie.WithSameSite(ss)
}

// Cookie errors for checking return values.
var (
	ErrCookieNotFound   = cookie.ErrNotFound
	ErrCookieNoSecret   = cookie.ErrNoSecret
	ErrCookieInvalidSig = cookie.ErrInvalidSig
)

// Session options

// WithSessionCookieName sets the session cookie name ("__sid").
func WithSessionCookieName(name string) SessionOption {
	return internal.WithSessionCookieName(name)
}

// WithSessionMaxAge sets the session max age in seconds (30 days).
func WithSessionMaxAge(seconds int) SessionOption {
	return internal.WithSessionMaxAge(seconds)
}

// WithSessionFingerprint binds sessions to request attributes to detect
// hijacking.
//
//	ferro.WithSession(store,
//	    ferro.WithSessionFingerprint(ferro.FingerprintCookie, ferro.FingerprintReject),
//	)
func WithSessionFingerprint(mode FingerprintMode, strictness FingerprintStrictness) SessionOption {
	return internal.WithSessionFingerprint(mode, strictness)
}

// Fingerprint modes.
const (
	// FingerprintDisabled turns fingerprinting off.
	FingerprintDisabled = internal.FingerprintDisabled
	// FingerprintCookie hashes the user agent and accept-language.
	// Best for most web apps.
	FingerprintCookie = internal.FingerprintCookie
	// FingerprintStrict also binds the client IP. Mobile and corporate
	// networks rotate IPs, so expect false positives.
	FingerprintStrict = internal.FingerprintStrict
)

// Fingerprint strictness.
const (
	// FingerprintWarn logs a mismatch but keeps the session.
	FingerprintWarn = internal.FingerprintWarn
	// FingerprintReject invalidates the session on mismatch.
	FingerprintReject = internal.FingerprintReject
)

// Session errors for checking return values.
var (
	ErrSessionNotConfigured       = session.ErrNotConfigured
	ErrSessionNotFound            = session.ErrNotFound
	ErrSessionExpired             = session.ErrExpired
	ErrSessionInvalidToken        = session.ErrInvalidToken
	ErrSessionFingerprintMismatch = session.ErrFingerprintMismatch
)

// SessionValue retrieves a typed session value. Returns an error when
// the key is missing or the type does not match.
//
//	theme, err := ferro.SessionValue[string](sess, "theme")
func SessionValue[T any](sess *Session, key string) (T, error) {
	return session.Value[T](sess, key)
}

// SessionValueOr retrieves a typed session value, or defaultVal.
func SessionValueOr[T any](sess *Session, key string, defaultVal T) T {
	return session.ValueOr(sess, key, defaultVal)
}

// Queue registration options, re-exported from pkg/queue.

// WithTask registers a task handler using structural typing. The task
// implements Name() and Handle(ctx, P).
func WithTask[P any, T interface {
	Name() string
	Handle(context.Context, P) error
}](task T, opts ...queue.TaskOption) QueueOption {
	return queue.WithTask[P, T](task, opts...)
}

// WithScheduledTask registers a periodic task. The task implements
// Name(), Schedule(), and Handle(ctx).
func WithScheduledTask[T interface {
	Name() string
	Schedule() string
	Handle(context.Context) error
}](task T, opts ...queue.TaskOption) QueueOption {
	return queue.WithScheduledTask[T](task, opts...)
}

// WithQueueName configures a named queue with its worker concurrency.
func WithQueueName(name string, workers int) QueueOption {
	return queue.WithQueue(name, workers)
}

// WithQueueLogger sets the logger for task processing.
func WithQueueLogger(l *slog.Logger) QueueOption {
	return queue.WithLogger(l)
}

// Enqueue options, re-exported from pkg/queue.

// InQueue routes the task to a named queue.
func InQueue(name string) EnqueueOption {
	return queue.InQueue(name)
}

// ScheduledAt delays the task until a specific time.
func ScheduledAt(t time.Time) EnqueueOption {
	return queue.ScheduledAt(t)
}

// ScheduledIn delays the task by a duration.
func ScheduledIn(d time.Duration) EnqueueOption {
	return queue.ScheduledIn(d)
}

// MaxAttempts caps retry attempts for the task.
func MaxAttempts(n int) EnqueueOption {
	return queue.MaxAttempts(n)
}

// UniqueFor deduplicates the task for the given duration.
func UniqueFor(d time.Duration) EnqueueOption {
	return queue.UniqueFor(d)
}

// UniqueKey sets a custom deduplication key.
func UniqueKey(key string) EnqueueOption {
	return queue.UniqueKey(key)
}

// Queue errors for checking return values.
var (
	ErrQueueNotConfigured = queue.ErrNotConfigured
)

// QueueHealthcheck returns a readiness check for the queue manager.
func QueueHealthcheck(m *queue.Manager) health.CheckFunc {
	return queue.Healthcheck(m)
}

// Broadcast options, re-exported from pkg/broadcast.

// NewBroadcaster creates a websocket broadcaster. Pass WithRedis for a
// multi-node backplane.
func NewBroadcaster(opts ...BroadcastOption) *broadcast.Broadcaster {
	return broadcast.New(opts...)
}

// WithBroadcastRedis enables the Redis backplane so broadcasts reach
// sockets on other nodes.
func WithBroadcastRedis(client redis.UniversalClient) BroadcastOption {
	return broadcast.WithRedis(client)
}

// ExcludeSocket skips one socket when broadcasting, typically the
// sender's own connection.
func ExcludeSocket(socketID string) PublishOption {
	return broadcast.ExcludeSocket(socketID)
}
