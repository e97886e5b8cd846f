package queue

import (
	"context"
	"log/slog"
	"time"
)

const (
	// DefaultQueue receives jobs that name no explicit queue.
	DefaultQueue = "default"

	defaultKeyPrefix    = "queue"
	defaultConcurrency  = 10
	defaultMaxAttempts  = 25
	defaultPollInterval = 500 * time.Millisecond
	defaultPopTimeout   = time.Second
	defaultBackoffBase  = 5 * time.Second
	defaultBackoffCap   = 15 * time.Minute
)

// BackoffFunc maps a failed attempt number (1-based) to the delay before
// the next attempt.
type BackoffFunc func(attempt int) time.Duration

// DefaultBackoff doubles a 5s base per attempt, capped at 15 minutes.
func DefaultBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := defaultBackoffBase << (attempt - 1)
	if d <= 0 || d > defaultBackoffCap {
		return defaultBackoffCap
	}
	return d
}

// config holds manager configuration assembled from options.
type config struct {
	registry     *taskRegistry
	queues       map[string]int
	logger       *slog.Logger
	schedules    []scheduleConfig
	keyPrefix    string
	concurrency  int
	maxAttempts  int
	pollInterval time.Duration
	backoff      BackoffFunc
}

func newConfig() *config {
	return &config{
		registry: newTaskRegistry(),
		queues:   make(map[string]int),
	}
}

type scheduleConfig struct {
	handler  func(context.Context) error
	name     string
	schedule string
	opts     []TaskOption
}

// Option configures the queue manager.
type Option func(*config)

// TaskOption sets per-task defaults at registration time.
type TaskOption func(*taskOptions)

// TaskQueue routes the task's jobs to a named queue by default.
func TaskQueue(name string) TaskOption {
	return func(o *taskOptions) {
		if name != "" {
			o.queue = name
		}
	}
}

// TaskMaxAttempts caps retries for the task's jobs.
func TaskMaxAttempts(n int) TaskOption {
	return func(o *taskOptions) {
		if n > 0 {
			o.maxAttempts = n
		}
	}
}

// TaskTimeout bounds a single execution attempt.
func TaskTimeout(d time.Duration) TaskOption {
	return func(o *taskOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// TaskBackoff overrides the retry delay curve for the task.
func TaskBackoff(fn BackoffFunc) TaskOption {
	return func(o *taskOptions) {
		if fn != nil {
			o.backoff = fn
		}
	}
}

// TaskUniqueFor suppresses duplicate enqueues of the task within the
// window, keyed by the job's unique key or payload.
func TaskUniqueFor(d time.Duration) TaskOption {
	return func(o *taskOptions) {
		if d > 0 {
			o.uniqueFor = d
		}
	}
}

// WithTask registers a task handler using structural typing. The task must
// implement Name() and Handle(ctx, P); the payload type P is inferred from
// the Handle signature.
//
//	type SendWelcome struct{ mailer *mailer.Mailer }
//
//	func (t *SendWelcome) Name() string { return "send_welcome" }
//	func (t *SendWelcome) Handle(ctx context.Context, p WelcomePayload) error { ... }
//
//	queue.WithTask(&SendWelcome{mailer: m}, queue.TaskQueue("email"))
func WithTask[P any, T interface {
	Name() string
	Handle(context.Context, P) error
}](task T, opts ...TaskOption) Option {
	return func(c *config) {
		var to taskOptions
		for _, opt := range opts {
			opt(&to)
		}
		c.registry.register(task.Name(), &taskWrapper[P, T]{task: task}, to)
	}
}

// WithScheduledTask registers a recurring task. Schedule() returns a
// standard 5-field cron expression evaluated by the manager's scheduler.
func WithScheduledTask[T interface {
	Name() string
	Schedule() string
	Handle(context.Context) error
}](task T, opts ...TaskOption) Option {
	return func(c *config) {
		c.schedules = append(c.schedules, scheduleConfig{
			name:     task.Name(),
			schedule: task.Schedule(),
			handler:  task.Handle,
			opts:     opts,
		})
	}
}

// WithQueue declares a named queue with its worker count. The default
// queue always exists with the manager-wide concurrency.
func WithQueue(name string, workers int) Option {
	return func(c *config) {
		if name != "" && workers > 0 {
			c.queues[name] = workers
		}
	}
}

// WithConcurrency sets the worker count for the default queue and for any
// queue declared without one. Defaults to 10.
func WithConcurrency(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithMaxAttempts sets the manager-wide retry cap. Defaults to 25.
func WithMaxAttempts(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithKeyPrefix namespaces all queue keys in Redis. Defaults to "queue".
func WithKeyPrefix(prefix string) Option {
	return func(c *config) {
		if prefix != "" {
			c.keyPrefix = prefix
		}
	}
}

// WithPollInterval tunes how often delayed and retry jobs are promoted to
// their ready lists. Defaults to 500ms.
func WithPollInterval(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithBackoff sets the manager-wide retry delay curve.
func WithBackoff(fn BackoffFunc) Option {
	return func(c *config) {
		if fn != nil {
			c.backoff = fn
		}
	}
}

// WithLogger sets the logger for job processing. Defaults to a noop logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
