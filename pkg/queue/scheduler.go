package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
)

// scheduler fires recurring tasks through the regular enqueue path. Each
// tick enqueues with a unique key derived from the task name and the
// minute of the tick, so overlapping schedulers on multiple nodes produce
// a single job per firing.
type scheduler struct {
	cron     *cron.Cron
	enqueuer *Enqueuer
	logger   *slog.Logger
}

func newScheduler(enqueuer *Enqueuer, logger *slog.Logger) *scheduler {
	return &scheduler{
		cron:     cron.New(),
		enqueuer: enqueuer,
		logger:   logger,
	}
}

func (s *scheduler) add(sched scheduleConfig) error {
	name := sched.name
	_, err := s.cron.AddFunc(sched.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		tick := time.Now().Truncate(time.Minute).Unix()
		err := s.enqueuer.Enqueue(ctx, name, nil,
			UniqueKey(name+"@"+strconv.FormatInt(tick, 10)),
			UniqueFor(2*time.Minute),
		)
		switch {
		case errors.Is(err, ErrDuplicateJob):
			s.logger.DebugContext(ctx, "scheduled firing claimed by another node",
				slog.String("task", name),
			)
		case err != nil:
			s.logger.ErrorContext(ctx, "scheduled enqueue failed",
				slog.String("task", name),
				slog.Any("error", err),
			)
		}
	})
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidSchedule, sched.schedule, err)
	}
	return nil
}

func (s *scheduler) start() { s.cron.Start() }

func (s *scheduler) stop() context.Context { return s.cron.Stop() }
