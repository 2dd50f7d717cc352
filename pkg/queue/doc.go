// Package queue runs background jobs on River with Postgres as the backing
// store. It provides a Manager that registers typed task handlers, periodic
// cron-scheduled tasks, and an Enqueuer for insert-only processes.
//
// Enqueueing with a unique key makes delivery idempotent at the queue
// boundary: inserting a job whose key already exists within the uniqueness
// period is a no-op. Combined with deterministic keys (webhook event IDs,
// plannerRunID:recipientID) this gives at-most-once enqueue for
// at-least-once triggers.
//
// Worker failure classification: a terminal step-executor failure cancels
// the job (no retries), throttle backpressure snoozes it until the rate
// window rolls over, and any other error is left to River's retry policy.
//
// River stores jobs in its own tables (river_job, river_leader,
// river_queue). Apply them with Migrate before creating a Manager or
// Enqueuer.
//
// Usage:
//
//	if err := queue.Migrate(ctx, pool); err != nil { ... }
//	manager, err := queue.NewManager(pool,
//	    queue.WithTask[identity.Delivery](reconciler),
//	    queue.WithScheduledTask(planner),
//	    queue.WithLogger(log),
//	)
//	if err != nil { ... }
//	if err := manager.Start(ctx); err != nil { ... }
//	defer manager.Stop(ctx)
//
//	manager.Enqueue(ctx, "identity.reconcile", event,
//	    queue.UniqueKey(event.ID),
//	    queue.UniqueFor(24*time.Hour),
//	)
package queue
