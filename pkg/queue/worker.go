package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/redis/go-redis/v9"
)

// worker drains one queue's ready list. Jobs move atomically into the
// consumer's processing list via BLMOVE so a crash between pop and ack
// leaves the job recoverable instead of lost.
type worker struct {
	client   redis.UniversalClient
	registry *taskRegistry
	logger   *slog.Logger
	keys     keys
	queue    string
	consumer string
	backoff  BackoffFunc
}

func (w *worker) run(ctx context.Context) {
	ready := w.keys.ready(w.queue)
	processing := w.keys.processing(w.queue, w.consumer)

	for {
		if ctx.Err() != nil {
			return
		}
		raw, err := w.client.BLMove(ctx, ready, processing, "RIGHT", "LEFT", defaultPopTimeout).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			w.logger.ErrorContext(ctx, "queue pop failed",
				slog.String("queue", w.queue),
				slog.Any("error", err),
			)
			// Back off briefly so a dead Redis does not spin the loop.
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}
		w.process(ctx, raw, processing)
	}
}

func (w *worker) process(ctx context.Context, raw string, processing string) {
	// The raw blob is removed from the processing list by value, so keep
	// it untouched until the job is acked or rerouted.
	defer func() {
		if err := w.client.LRem(context.WithoutCancel(ctx), processing, 1, raw).Err(); err != nil {
			w.logger.ErrorContext(ctx, "queue ack failed",
				slog.String("queue", w.queue),
				slog.Any("error", err),
			)
		}
	}()

	job, err := decodeJob([]byte(raw))
	if err != nil {
		w.logger.ErrorContext(ctx, "undecodable job dropped to dead letter",
			slog.String("queue", w.queue),
			slog.Any("error", err),
		)
		w.client.LPush(context.WithoutCancel(ctx), w.keys.dead(), raw)
		return
	}

	entry, ok := w.registry.get(job.Task)
	if !ok {
		w.fail(ctx, job, fmt.Errorf("%w: %s", ErrUnknownTask, job.Task), taskOptions{})
		return
	}

	job.Attempt++
	execErr := w.execute(ctx, entry, job)
	if execErr == nil {
		w.logger.DebugContext(ctx, "job completed",
			slog.String("task", job.Task),
			slog.String("job_id", job.ID),
			slog.Int("attempt", job.Attempt),
		)
		return
	}
	w.fail(ctx, job, execErr, entry.opts)
}

// execute runs one attempt with panic recovery and the task's per-attempt
// timeout.
func (w *worker) execute(ctx context.Context, entry taskEntry, job *Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("queue: task panic: %v\n%s", r, debug.Stack())
		}
	}()

	if entry.opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, entry.opts.timeout)
		defer cancel()
	}
	return entry.executor.Execute(ctx, job.Payload)
}

// fail reroutes a failed job: back to the retry set with backoff while
// attempts remain, to the dead-letter list once exhausted.
func (w *worker) fail(ctx context.Context, job *Job, execErr error, opts taskOptions) {
	job.LastError = execErr.Error()
	bg := context.WithoutCancel(ctx)

	blob, err := job.encode()
	if err != nil {
		w.logger.ErrorContext(ctx, "failed job not re-encodable",
			slog.String("job_id", job.ID),
			slog.Any("error", err),
		)
		return
	}

	if job.Attempt >= job.MaxAttempts {
		w.logger.ErrorContext(ctx, "job moved to dead letter",
			slog.String("task", job.Task),
			slog.String("job_id", job.ID),
			slog.Int("attempt", job.Attempt),
			slog.Any("error", execErr),
		)
		if err := w.client.LPush(bg, w.keys.dead(), blob).Err(); err != nil {
			w.logger.ErrorContext(ctx, "dead letter push failed", slog.Any("error", err))
		}
		return
	}

	backoff := w.backoff
	if opts.backoff != nil {
		backoff = opts.backoff
	}
	delay := backoff(job.Attempt)
	runAt := time.Now().Add(delay)

	w.logger.WarnContext(ctx, "job failed, retrying",
		slog.String("task", job.Task),
		slog.String("job_id", job.ID),
		slog.Int("attempt", job.Attempt),
		slog.Int("max_attempts", job.MaxAttempts),
		slog.Duration("backoff", delay),
		slog.Any("error", execErr),
	)

	err = w.client.ZAdd(bg, w.keys.retry(), redis.Z{
		Score:  float64(runAt.UnixMilli()),
		Member: blob,
	}).Err()
	if err != nil {
		w.logger.ErrorContext(ctx, "retry scheduling failed", slog.Any("error", err))
	}
}
