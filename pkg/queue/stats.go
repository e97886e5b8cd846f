package queue

import (
	"context"
	"fmt"
)

// QueueStats describes one queue's depth.
type QueueStats struct {
	Name       string `json:"name"`
	Ready      int64  `json:"ready"`
	Processing int64  `json:"processing"`
	Workers    int    `json:"workers"`
}

// Stats is a point-in-time snapshot of queue depths for monitoring and
// introspection.
type Stats struct {
	Queues  []QueueStats `json:"queues"`
	Tasks   []string     `json:"tasks"`
	Delayed int64        `json:"delayed"`
	Retry   int64        `json:"retry"`
	Dead    int64        `json:"dead"`
}

// Stats reports ready and in-flight depths per queue plus the shared
// delayed, retry, and dead-letter counts. Processing counts cover this
// node's consumers only.
func (m *Manager) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{Tasks: m.registry.names()}

	for name, workers := range m.queues {
		ready, err := m.client.LLen(ctx, m.keys.ready(name)).Result()
		if err != nil {
			return Stats{}, fmt.Errorf("queue: stats: %w", err)
		}
		processing, err := m.client.LLen(ctx, m.keys.processing(name, m.consumer)).Result()
		if err != nil {
			return Stats{}, fmt.Errorf("queue: stats: %w", err)
		}
		stats.Queues = append(stats.Queues, QueueStats{
			Name:       name,
			Ready:      ready,
			Processing: processing,
			Workers:    workers,
		})
	}

	var err error
	if stats.Delayed, err = m.client.ZCard(ctx, m.keys.delayed()).Result(); err != nil {
		return Stats{}, fmt.Errorf("queue: stats: %w", err)
	}
	if stats.Retry, err = m.client.ZCard(ctx, m.keys.retry()).Result(); err != nil {
		return Stats{}, fmt.Errorf("queue: stats: %w", err)
	}
	if stats.Dead, err = m.client.LLen(ctx, m.keys.dead()).Result(); err != nil {
		return Stats{}, fmt.Errorf("queue: stats: %w", err)
	}
	return stats, nil
}
