package queue

import "time"

// enqueueConfig holds per-job overrides collected from EnqueueOptions.
type enqueueConfig struct {
	scheduledAt *time.Time
	queue       string
	uniqueKey   string
	tags        []string
	maxAttempts int
	uniqueFor   time.Duration
	front       bool
}

// EnqueueOption configures a single enqueue call.
type EnqueueOption func(*enqueueConfig)

// InQueue routes the job to a named queue, overriding the task default.
func InQueue(name string) EnqueueOption {
	return func(c *enqueueConfig) {
		if name != "" {
			c.queue = name
		}
	}
}

// ScheduledAt holds the job until the given time.
func ScheduledAt(t time.Time) EnqueueOption {
	return func(c *enqueueConfig) {
		c.scheduledAt = &t
	}
}

// ScheduledIn holds the job for the given duration.
func ScheduledIn(d time.Duration) EnqueueOption {
	return func(c *enqueueConfig) {
		t := time.Now().Add(d)
		c.scheduledAt = &t
	}
}

// MaxAttempts overrides the retry cap for this job.
func MaxAttempts(n int) EnqueueOption {
	return func(c *enqueueConfig) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// UniqueFor suppresses duplicate enqueues of the same task and unique key
// for the given window. Duplicates are reported as ErrDuplicateJob.
func UniqueFor(d time.Duration) EnqueueOption {
	return func(c *enqueueConfig) {
		if d > 0 {
			c.uniqueFor = d
		}
	}
}

// UniqueKey sets the deduplication key used with UniqueFor. When omitted,
// a hash of the payload is used.
func UniqueKey(key string) EnqueueOption {
	return func(c *enqueueConfig) {
		c.uniqueKey = key
	}
}

// AtFront pushes the job to the consuming end of its queue so it is picked
// up before older jobs.
func AtFront() EnqueueOption {
	return func(c *enqueueConfig) {
		c.front = true
	}
}

// Tags attaches metadata tags to the job for monitoring and debugging.
func Tags(tags ...string) EnqueueOption {
	return func(c *enqueueConfig) {
		c.tags = append(c.tags, tags...)
	}
}
