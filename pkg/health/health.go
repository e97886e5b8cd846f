// Package health aggregates named readiness checks and exposes liveness and
// readiness HTTP handlers for orchestrator probes.
package health

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"
)

const defaultTimeout = 5 * time.Second

const (
	StatusUp   = "up"
	StatusDown = "down"
)

// CheckFunc probes a single dependency. The db, redis, and queue packages
// all export closures with this signature.
type CheckFunc func(ctx context.Context) error

// Checks maps a check name to its probe.
type Checks map[string]CheckFunc

// Report is the aggregated result of a readiness run.
type Report struct {
	Checks map[string]Result `json:"checks,omitempty"`
	Status string            `json:"status"`
}

// Result is the outcome of one check.
type Result struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type config struct {
	logger  *slog.Logger
	timeout time.Duration
}

// Option configures readiness behavior.
type Option func(*config)

// WithTimeout bounds the whole readiness run.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger used for failed checks.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		timeout: defaultTimeout,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// run executes every check in parallel under a shared timeout.
func run(ctx context.Context, checks Checks, cfg *config) *Report {
	if len(checks) == 0 {
		return &Report{Status: StatusUp}
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]Result, len(checks))
		failed  bool
	)

	for name, check := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()

			res := Result{Status: StatusUp}
			if err := check(ctx); err != nil {
				res.Status = StatusDown
				res.Error = err.Error()
				cfg.logger.WarnContext(ctx, "readiness check failed",
					slog.String("check", name),
					slog.String("error", err.Error()),
				)
			}

			mu.Lock()
			results[name] = res
			if res.Status == StatusDown {
				failed = true
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	status := StatusUp
	if failed {
		status = StatusDown
	}
	return &Report{Status: status, Checks: results}
}
