package internal

import (
	"context"

	"github.com/albertogferrario/ferro/pkg/queue"
)

// JobEnqueuer is the slice of the queue the request context needs:
// pushing tasks. Both queue.Enqueuer and queue.Manager satisfy it, so
// web-only nodes can enqueue without carrying workers.
type JobEnqueuer interface {
	Enqueue(ctx context.Context, name string, payload any, opts ...queue.EnqueueOption) error
}

// QueueManager wraps queue.Manager so the app can start and stop
// workers alongside the HTTP server and expose queue introspection.
type QueueManager struct {
	manager *queue.Manager
}

// NewQueueManager wraps an already-configured queue manager.
func NewQueueManager(m *queue.Manager) *QueueManager {
	return &QueueManager{manager: m}
}

// Enqueue pushes a task through the wrapped manager.
func (qm *QueueManager) Enqueue(ctx context.Context, name string, payload any, opts ...queue.EnqueueOption) error {
	return qm.manager.Enqueue(ctx, name, payload, opts...)
}

// Start launches the worker pools.
func (qm *QueueManager) Start(ctx context.Context) error {
	return qm.manager.Start(ctx)
}

// Stop drains in-flight tasks and stops the workers.
func (qm *QueueManager) Stop(ctx context.Context) error {
	return qm.manager.Stop(ctx)
}

// Shutdown returns the manager's shutdown hook for the run loop.
func (qm *QueueManager) Shutdown() func(context.Context) error {
	return qm.manager.Shutdown()
}

// Stats reports current queue depths.
func (qm *QueueManager) Stats(ctx context.Context) (queue.Stats, error) {
	return qm.manager.Stats(ctx)
}

// Tasks lists the registered task names.
func (qm *QueueManager) Tasks() []string {
	return qm.manager.Tasks()
}

// TaskDetails lists registered tasks with queue and schedule info.
func (qm *QueueManager) TaskDetails() []queue.TaskDetail {
	return qm.manager.TaskDetails()
}

// Manager exposes the wrapped queue.Manager.
func (qm *QueueManager) Manager() *queue.Manager {
	return qm.manager
}
