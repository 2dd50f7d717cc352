package queue

import "time"

// enqueueConfig holds options for a single enqueue.
type enqueueConfig struct {
	scheduledAt *time.Time
	queue       string
	uniqueKey   string
	maxAttempts int
	uniqueFor   time.Duration
}

// EnqueueOption configures job enqueueing.
type EnqueueOption func(*enqueueConfig)

// InQueue routes the job to a named queue instead of the default one.
func InQueue(name string) EnqueueOption {
	return func(c *enqueueConfig) {
		if name != "" {
			c.queue = name
		}
	}
}

// ScheduledAt delays processing until a specific time.
func ScheduledAt(t time.Time) EnqueueOption {
	return func(c *enqueueConfig) {
		c.scheduledAt = &t
	}
}

// MaxAttempts caps retry attempts for the job. Defaults to River's default.
func MaxAttempts(n int) EnqueueOption {
	return func(c *enqueueConfig) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// UniqueFor ensures at most one job with the same task name and unique key
// exists within the duration. A duplicate insert is skipped, not queued
// twice. Pair it with UniqueKey; without one, uniqueness collapses to the
// task name alone.
//
// Example:
//
//	// Redelivered webhooks collapse onto one reconciliation job.
//	m.Enqueue(ctx, "identity.reconcile", ev,
//	    queue.UniqueKey(ev.ID),
//	    queue.UniqueFor(24*time.Hour),
//	)
func UniqueFor(d time.Duration) EnqueueOption {
	return func(c *enqueueConfig) {
		c.uniqueFor = d
	}
}

// UniqueKey sets the deduplication key used with UniqueFor. Keys must be
// deterministic per logical unit of work; never a random ID.
func UniqueKey(key string) EnqueueOption {
	return func(c *enqueueConfig) {
		c.uniqueKey = key
	}
}
