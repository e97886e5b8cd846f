package queue

import (
	"context"
	"encoding/json"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"
)

// taskExecutor is the type-erased execution interface, letting the registry
// hold tasks with different payload types.
type taskExecutor interface {
	Execute(ctx context.Context, payload json.RawMessage) error
}

// taskOptions carries per-task defaults applied at enqueue and execution
// time unless overridden per job.
type taskOptions struct {
	backoff     BackoffFunc
	queue       string
	maxAttempts int
	timeout     time.Duration
	uniqueFor   time.Duration
}

type taskEntry struct {
	executor taskExecutor
	opts     taskOptions
}

type taskRegistry struct {
	entries map[string]taskEntry
	mu      sync.RWMutex
}

func newTaskRegistry() *taskRegistry {
	return &taskRegistry{entries: make(map[string]taskEntry)}
}

func (r *taskRegistry) register(name string, executor taskExecutor, opts taskOptions) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = taskEntry{executor: executor, opts: opts}
}

func (r *taskRegistry) get(name string) (taskEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[name]
	return entry, ok
}

func (r *taskRegistry) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.entries))
}

// taskWrapper adapts a typed task to the type-erased executor interface by
// unmarshaling the JSON payload before dispatch.
type taskWrapper[P any, T interface {
	Name() string
	Handle(context.Context, P) error
}] struct {
	task T
}

func (w *taskWrapper[P, T]) Execute(ctx context.Context, raw json.RawMessage) error {
	var payload P
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			return errors.Join(ErrInvalidPayload, err)
		}
	}
	return w.task.Handle(ctx, payload)
}

// funcExecutor runs payload-less handlers, used for scheduled tasks.
type funcExecutor func(context.Context) error

func (f funcExecutor) Execute(ctx context.Context, _ json.RawMessage) error {
	return f(ctx)
}
