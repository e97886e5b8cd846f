package internal

import (
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/albertogferrario/ferro/pkg/broadcast"
	"github.com/albertogferrario/ferro/pkg/cookie"
	"github.com/albertogferrario/ferro/pkg/health"
	"github.com/albertogferrario/ferro/pkg/logger"
	"github.com/albertogferrario/ferro/pkg/mailer"
	"github.com/albertogferrario/ferro/pkg/queue"
	"github.com/albertogferrario/ferro/pkg/session"
	"github.com/albertogferrario/ferro/pkg/storage"
)

// Option configures the App at construction.
type Option func(*App)

// WithAppInfo names the app and its environment. The MCP app_info tool
// and log decoration use it.
func WithAppInfo(name, env string) Option {
	return func(a *App) {
		a.name = name
		a.env = env
	}
}

// WithBaseDomain sets the base domain so c.Subdomain() can resolve
// tenant subdomains.
func WithBaseDomain(domain string) Option {
	return func(a *App) {
		a.baseDomain = domain
	}
}

// WithMiddleware appends global middleware, applied in the given order.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithHandlers registers route handlers. Each handler's Routes method
// runs during setup.
func WithHandlers(h ...Handler) Option {
	return func(a *App) {
		a.handlers = append(a.handlers, h...)
	}
}

// WithStaticFiles serves files from fsys under the pattern. Directory
// listings are blocked and responses carry cache and nosniff headers.
//
//	//go:embed public
//	var assets embed.FS
//
//	ferro.WithStaticFiles("/static", assets, "public")
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return func(a *App) {
		subFS, err := fs.Sub(fsys, subDir)
		if err != nil {
			panic(fmt.Sprintf("static files: %v", err))
		}

		fileServer := http.StripPrefix(strings.TrimSuffix(pattern, "/"), http.FileServerFS(subFS))

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasSuffix(r.URL.Path, "/") {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Cache-Control", "public, max-age=3600")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			fileServer.ServeHTTP(w, r)
		})

		a.staticRoutes = append(a.staticRoutes, staticRoute{handler, pattern})
	}
}

// WithErrorHandler overrides how handler errors become responses. When
// the handler returns a non-nil error the built-in JSON response runs
// as a fallback.
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		a.errorHandler = h
	}
}

// WithNotFoundHandler overrides the 404 response.
func WithNotFoundHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.notFoundHandler = h
	}
}

// WithMethodNotAllowedHandler overrides the 405 response.
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.methodNotAllowedHandler = h
	}
}

// WithHealthChecks exposes liveness and readiness endpoints. Liveness
// only proves the process serves; readiness runs the registered checks.
//
//	ferro.WithHealthChecks(
//	    ferro.WithReadinessCheck("db", db.Healthcheck(pool)),
//	    ferro.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
			checks:        make(health.Checks),
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
}

// WithLogger builds a JSON logger tagged with the component name.
// Extractors pull per-request values like the request ID into every
// entry.
//
//	ferro.WithLogger("web", middlewares.RequestIDExtractor())
func WithLogger(component string, extractors ...logger.ContextExtractor) Option {
	return func(a *App) {
		a.logger = logger.New(extractors...).With(slog.String("component", component))
	}
}

// WithCustomLogger installs a caller-built logger as-is.
func WithCustomLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithCookieOptions configures the cookie jar shared by plain, signed,
// encrypted, and flash cookies. A secret is required for everything
// beyond plain cookies.
//
//	ferro.WithCookieOptions(
//	    cookie.WithSecret(os.Getenv("APP_SECRET")),
//	    cookie.WithSecure(true),
//	)
func WithCookieOptions(opts ...cookie.Option) Option {
	return func(a *App) {
		a.cookies = cookie.New(opts...)
	}
}

// WithSession enables server-side sessions backed by the given store.
// Sessions load lazily and dirty sessions persist right before the
// response is written. The app's cookie jar signs the session cookie,
// so a cookie secret must be configured.
//
//	ferro.WithSession(store,
//	    ferro.WithSessionMaxAge(86400*30),
//	    ferro.WithSessionFingerprint(ferro.FingerprintCookie, ferro.FingerprintWarn),
//	)
func WithSession(store session.Store, opts ...SessionOption) Option {
	return func(a *App) {
		a.sessionStore = store
		a.sessionOpts = opts
	}
}

// WithQueue enables both enqueueing and worker processing on this node.
// Workers start when the app runs and drain on shutdown.
//
//	ferro.WithQueue(redisClient,
//	    ferro.WithTask(tasks.NewSendWelcome(m)),
//	    ferro.WithQueueName("email", 4),
//	)
func WithQueue(client redis.UniversalClient, opts ...queue.Option) Option {
	return func(a *App) {
		m, err := queue.NewManager(client, opts...)
		if err != nil {
			panic(fmt.Sprintf("queue: %v", err))
		}
		qm := NewQueueManager(m)
		a.jobs = qm
		a.queueWorker = qm
	}
}

// WithQueueEnqueuer enables enqueueing only. Use on web nodes that
// dispatch to dedicated worker processes.
func WithQueueEnqueuer(client redis.UniversalClient, opts ...queue.Option) Option {
	return func(a *App) {
		e, err := queue.NewEnqueuer(client, opts...)
		if err != nil {
			panic(fmt.Sprintf("queue enqueuer: %v", err))
		}
		a.jobs = e
	}
}

// WithQueueWorker enables worker processing without enqueueing from
// handlers; c.Enqueue returns queue.ErrNotConfigured. Use for
// dedicated worker processes.
func WithQueueWorker(client redis.UniversalClient, opts ...queue.Option) Option {
	return func(a *App) {
		m, err := queue.NewManager(client, opts...)
		if err != nil {
			panic(fmt.Sprintf("queue worker: %v", err))
		}
		a.queueWorker = NewQueueManager(m)
	}
}

// WithBroadcaster wires a realtime broadcaster into the app. Its
// WebSocket endpoint mounts at path (default "/_ws" when empty), and it
// starts and stops with the server.
//
//	b := broadcast.New(broadcast.WithRedis(client))
//	ferro.WithBroadcaster(b, "/ws")
func WithBroadcaster(b *broadcast.Broadcaster, path string) Option {
	return func(a *App) {
		if b == nil {
			return
		}
		if path == "" {
			path = "/_ws"
		}
		a.broadcaster = b
		a.staticRoutes = append(a.staticRoutes, staticRoute{b.Handler(), path})
	}
}

// WithStorage enables file uploads through c.Upload, c.Download,
// c.DeleteFile, and c.FileURL.
func WithStorage(s storage.Storage) Option {
	return func(a *App) {
		a.storage = s
	}
}

// WithMailer attaches a mailer so services built on the app can send
// templated email.
func WithMailer(m *mailer.Mailer) Option {
	return func(a *App) {
		a.mailer = m
	}
}

// WithMCP mounts the read-only MCP introspection endpoint. Empty path
// defaults to "/_mcp".
//
//	ferro.WithMCP("")
func WithMCP(path string) Option {
	return func(a *App) {
		if path == "" {
			path = defaultMCPPath
		}
		a.mcpConfig = &mcpConfig{path: path}
	}
}
