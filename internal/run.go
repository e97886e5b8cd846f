package internal

import (
	"errors"
	"net/http"

	"github.com/albertogferrario/ferro/pkg/hostrouter"
)

// Run serves multiple apps behind host-based routing and blocks until
// shutdown. Workers and broadcasters configured on any app start before
// the listener accepts and stop during graceful shutdown, each exactly
// once even when an app serves several domains.
//
//	api := ferro.New(ferro.WithHandlers(handlers.NewAPI(store)))
//	site := ferro.New(ferro.WithHandlers(handlers.NewSite(store)))
//
//	err := ferro.Run(
//	    ferro.Domain("api.acme.com", api),
//	    ferro.Domain("*.acme.com", site),
//	    ferro.Address(":8080"),
//	)
func Run(opts ...RunOption) error {
	cfg := buildRunConfig(opts...)

	var handler http.Handler
	var apps []*App

	switch {
	case len(cfg.domains) > 0:
		routes := make(hostrouter.Routes)
		for pattern, app := range cfg.domains {
			routes[pattern] = app.Router()
			apps = append(apps, app)
		}

		var fallback http.Handler = http.NotFoundHandler()
		if cfg.fallback != nil {
			fallback = cfg.fallback.Router()
			apps = append(apps, cfg.fallback)
		}

		handler = hostrouter.New(routes, fallback)

	case cfg.fallback != nil:
		handler = cfg.fallback.Router()
		apps = append(apps, cfg.fallback)

	default:
		return errors.New("ferro: Run needs at least one Domain or a Fallback")
	}

	startupHooks := cfg.startupHooks
	shutdownHooks := cfg.shutdownHooks

	seenApps := make(map[*App]bool)
	for _, app := range apps {
		if seenApps[app] {
			continue
		}
		seenApps[app] = true
		startupHooks, shutdownHooks = app.lifecycleHooks(startupHooks, shutdownHooks)
	}

	return runServer(runtimeConfig{
		handler:         handler,
		address:         cfg.address,
		logger:          cfg.logger,
		shutdownTimeout: cfg.shutdownTimeout,
		startupHooks:    startupHooks,
		shutdownHooks:   shutdownHooks,
		baseCtx:         cfg.baseCtx,
	})
}
