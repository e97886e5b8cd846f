package queue

import "errors"

var (
	// ErrNotConfigured is returned when queue features are used without
	// configuring a queue on the app.
	ErrNotConfigured = errors.New("queue: not configured")

	// ErrClientRequired is returned when a manager is created without a
	// Redis client.
	ErrClientRequired = errors.New("queue: redis client is required")

	// ErrUnknownTask is returned when enqueueing or executing a task that
	// has not been registered.
	ErrUnknownTask = errors.New("queue: unknown task")

	// ErrInvalidPayload is returned when a job payload cannot be
	// unmarshaled into the task's payload type.
	ErrInvalidPayload = errors.New("queue: invalid payload")

	// ErrDuplicateJob is returned when uniqueness options suppress an
	// enqueue because an equivalent job is still within its unique window.
	ErrDuplicateJob = errors.New("queue: duplicate job")

	// ErrInvalidSchedule is returned for unparseable cron expressions.
	ErrInvalidSchedule = errors.New("queue: invalid cron schedule")

	// ErrAlreadyStarted is returned when starting a running manager.
	ErrAlreadyStarted = errors.New("queue: already started")

	// ErrNotStarted is returned when stopping a manager that is not running.
	ErrNotStarted = errors.New("queue: not started")

	// ErrHealthcheckFailed wraps failures of the queue healthcheck.
	ErrHealthcheckFailed = errors.New("queue: healthcheck failed")
)
