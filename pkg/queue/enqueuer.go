package queue

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/albertogferrario/ferro/pkg/id"
)

// Enqueuer pushes jobs into Redis without running workers. Web nodes that
// only produce jobs can use it directly; Manager embeds it.
type Enqueuer struct {
	client      redis.UniversalClient
	registry    *taskRegistry
	logger      *slog.Logger
	keys        keys
	maxAttempts int
}

// NewEnqueuer creates a producer-only handle. Register the same tasks as
// the worker nodes so enqueue calls validate task names.
func NewEnqueuer(client redis.UniversalClient, opts ...Option) (*Enqueuer, error) {
	if client == nil {
		return nil, ErrClientRequired
	}

	cfg := newConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	applyConfigDefaults(cfg)

	return &Enqueuer{
		client:      client,
		registry:    cfg.registry,
		logger:      cfg.logger,
		keys:        keys{prefix: cfg.keyPrefix},
		maxAttempts: cfg.maxAttempts,
	}, nil
}

func applyConfigDefaults(cfg *config) {
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.keyPrefix == "" {
		cfg.keyPrefix = defaultKeyPrefix
	}
	if cfg.concurrency == 0 {
		cfg.concurrency = defaultConcurrency
	}
	if cfg.maxAttempts == 0 {
		cfg.maxAttempts = defaultMaxAttempts
	}
	if cfg.pollInterval == 0 {
		cfg.pollInterval = defaultPollInterval
	}
	if cfg.backoff == nil {
		cfg.backoff = DefaultBackoff
	}
}

// Enqueue serializes the payload and pushes a job for the named task.
// Scheduled jobs land in the delayed set; everything else goes straight to
// the task's ready list.
func (e *Enqueuer) Enqueue(ctx context.Context, name string, payload any, opts ...EnqueueOption) error {
	entry, ok := e.registry.get(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}

	ecfg := enqueueConfig{
		queue:       entry.opts.queue,
		maxAttempts: entry.opts.maxAttempts,
		uniqueFor:   entry.opts.uniqueFor,
	}
	for _, opt := range opts {
		opt(&ecfg)
	}
	if ecfg.queue == "" {
		ecfg.queue = DefaultQueue
	}
	if ecfg.maxAttempts == 0 {
		ecfg.maxAttempts = e.maxAttempts
	}

	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("queue: marshal payload: %w", err)
		}
		raw = b
	}

	var claimed string
	if ecfg.uniqueFor > 0 {
		uniqueKey := ecfg.uniqueKey
		if uniqueKey == "" {
			sum := sha256.Sum256(raw)
			uniqueKey = hex.EncodeToString(sum[:8])
		}
		claimed = e.keys.unique(name, uniqueKey)
		set, err := e.client.SetNX(ctx, claimed, "1", ecfg.uniqueFor).Result()
		if err != nil {
			return fmt.Errorf("queue: unique check: %w", err)
		}
		if !set {
			return fmt.Errorf("%w: %s (%s)", ErrDuplicateJob, name, uniqueKey)
		}
	}

	job := &Job{
		ID:          id.NewULID(),
		Task:        name,
		Queue:       ecfg.queue,
		Payload:     raw,
		Attempt:     0,
		MaxAttempts: ecfg.maxAttempts,
		UniqueKey:   ecfg.uniqueKey,
		Tags:        ecfg.tags,
		EnqueuedAt:  time.Now().UTC(),
	}
	blob, err := job.encode()
	if err != nil {
		e.releaseUnique(ctx, claimed)
		return fmt.Errorf("queue: encode job: %w", err)
	}

	if ecfg.scheduledAt != nil && ecfg.scheduledAt.After(time.Now()) {
		err = e.client.ZAdd(ctx, e.keys.delayed(), redis.Z{
			Score:  float64(ecfg.scheduledAt.UnixMilli()),
			Member: blob,
		}).Err()
		if err != nil {
			e.releaseUnique(ctx, claimed)
			return fmt.Errorf("queue: schedule job: %w", err)
		}
		e.logger.DebugContext(ctx, "job scheduled",
			slog.String("task", name),
			slog.String("job_id", job.ID),
			slog.Time("run_at", *ecfg.scheduledAt),
		)
		return nil
	}

	if err := e.push(ctx, job.Queue, blob, ecfg.front); err != nil {
		e.releaseUnique(ctx, claimed)
		return err
	}
	e.logger.DebugContext(ctx, "job enqueued",
		slog.String("task", name),
		slog.String("job_id", job.ID),
		slog.String("queue", job.Queue),
	)
	return nil
}

// releaseUnique frees a claimed uniqueness marker after a failed push so
// the window does not block legitimate re-enqueues. Best effort.
func (e *Enqueuer) releaseUnique(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := e.client.Del(ctx, key).Err(); err != nil {
		e.logger.WarnContext(ctx, "unique marker release failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

// push appends a job blob to a ready list. Workers pop from the right, so
// front insertion uses RPUSH.
func (e *Enqueuer) push(ctx context.Context, queueName string, blob []byte, front bool) error {
	key := e.keys.ready(queueName)
	var err error
	if front {
		err = e.client.RPush(ctx, key, blob).Err()
	} else {
		err = e.client.LPush(ctx, key, blob).Err()
	}
	if err != nil {
		return fmt.Errorf("queue: push job: %w", err)
	}
	return nil
}
