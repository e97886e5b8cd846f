package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/albertogferrario/ferro/pkg/id"
)

// Manager combines enqueueing, worker pools, the delayed-job promoter, and
// the cron scheduler on a shared Redis client. Jobs can be enqueued before
// Start; they sit in Redis until workers come up.
type Manager struct {
	*Enqueuer
	scheduler *scheduler
	cancel    context.CancelFunc
	queues    map[string]int
	schedules map[string]string
	consumer  string
	backoff   BackoffFunc
	interval  time.Duration

	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewManager creates a queue manager. Tasks and schedules are registered
// through options; Start launches the workers.
func NewManager(client redis.UniversalClient, opts ...Option) (*Manager, error) {
	if client == nil {
		return nil, ErrClientRequired
	}

	cfg := newConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	applyConfigDefaults(cfg)

	queues := map[string]int{DefaultQueue: cfg.concurrency}
	for name, workers := range cfg.queues {
		queues[name] = workers
	}

	enqueuer := &Enqueuer{
		client:      client,
		registry:    cfg.registry,
		logger:      cfg.logger,
		keys:        keys{prefix: cfg.keyPrefix},
		maxAttempts: cfg.maxAttempts,
	}

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "worker"
	}

	m := &Manager{
		Enqueuer:  enqueuer,
		scheduler: newScheduler(enqueuer, cfg.logger),
		queues:    queues,
		schedules: make(map[string]string),
		consumer:  hostname + "-" + id.NewShortID(),
		backoff:   cfg.backoff,
		interval:  cfg.pollInterval,
	}

	for _, sched := range cfg.schedules {
		m.schedules[sched.name] = sched.schedule
		var to taskOptions
		for _, opt := range sched.opts {
			opt(&to)
		}
		cfg.registry.register(sched.name, funcExecutor(sched.handler), to)
		if err := m.scheduler.add(sched); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Start launches worker pools for every declared queue, the promoter loop,
// and the cron scheduler. The passed context covers startup only; workers
// run until Stop.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return ErrAlreadyStarted
	}

	if err := m.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("queue: redis unreachable: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	p := &promoter{
		client:   m.client,
		logger:   m.logger,
		keys:     m.keys,
		interval: m.interval,
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		p.run(runCtx)
	}()

	for queueName, workers := range m.queues {
		for i := 0; i < workers; i++ {
			w := &worker{
				client:   m.client,
				registry: m.registry,
				logger:   m.logger,
				keys:     m.keys,
				queue:    queueName,
				consumer: m.consumer,
				backoff:  m.backoff,
			}
			m.wg.Add(1)
			go func() {
				defer m.wg.Done()
				w.run(runCtx)
			}()
		}
	}

	m.scheduler.start()
	m.started = true
	m.logger.Info("queue manager started",
		slog.Int("tasks", len(m.registry.names())),
		slog.Int("queues", len(m.queues)),
		slog.String("consumer", m.consumer),
	)
	return nil
}

// Stop drains the workers, waiting for in-flight jobs until ctx expires,
// then requeues anything left in this consumer's processing lists.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return ErrNotStarted
	}

	m.scheduler.stop()
	m.cancel()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	var waitErr error
	select {
	case <-done:
	case <-ctx.Done():
		waitErr = fmt.Errorf("queue: stop: %w", ctx.Err())
	}

	m.requeueProcessing(context.WithoutCancel(ctx))
	m.started = false
	m.logger.Info("queue manager stopped")
	return waitErr
}

// requeueProcessing returns unacked jobs to the consuming end of their
// ready lists so another node picks them up next.
func (m *Manager) requeueProcessing(ctx context.Context) {
	for queueName := range m.queues {
		processing := m.keys.processing(queueName, m.consumer)
		ready := m.keys.ready(queueName)
		for {
			err := m.client.LMove(ctx, processing, ready, "LEFT", "RIGHT").Err()
			if err != nil {
				if !errors.Is(err, redis.Nil) {
					m.logger.Error("requeue failed",
						slog.String("queue", queueName),
						slog.Any("error", err),
					)
				}
				break
			}
		}
	}
}

// Tasks returns the registered task names, sorted.
func (m *Manager) Tasks() []string {
	return m.registry.names()
}

// TaskDetail describes one registered task for introspection.
type TaskDetail struct {
	Name     string `json:"name"`
	Queue    string `json:"queue"`
	Schedule string `json:"schedule,omitempty"`
}

// TaskDetails returns the registered tasks with their target queue and
// cron schedule when one is set, sorted by name.
func (m *Manager) TaskDetails() []TaskDetail {
	details := make([]TaskDetail, 0, len(m.registry.names()))
	for _, name := range m.registry.names() {
		entry, _ := m.registry.get(name)
		queueName := entry.opts.queue
		if queueName == "" {
			queueName = DefaultQueue
		}
		details = append(details, TaskDetail{
			Name:     name,
			Queue:    queueName,
			Schedule: m.schedules[name],
		})
	}
	return details
}

// StartFunc returns a startup hook for the manager.
func (m *Manager) StartFunc() func(context.Context) error {
	return func(ctx context.Context) error {
		return m.Start(ctx)
	}
}

// Shutdown returns a shutdown hook for the manager.
func (m *Manager) Shutdown() func(context.Context) error {
	return func(ctx context.Context) error {
		return m.Stop(ctx)
	}
}
