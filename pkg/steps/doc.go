// Package steps executes a job as an ordered sequence of named, memoizable
// steps. Each step's result is persisted per run ID, so re-executing a run
// after a crash or retry skips already-completed steps and resumes at the
// first step without a recorded success.
//
// Run IDs must be caller-supplied and deterministic per logical unit of work
// (a provider event ID, or plannerRunID:recipientID for fan-out). That
// determinism is what makes retries idempotent instead of duplicating
// effects.
//
// Failures are classified: wrap an error with Terminal to abort the run
// permanently (a terminal run is never re-executed; subsequent Execute calls
// return ErrRunTerminated). Any other error leaves the failing step
// unrecorded so the next Execute with the same run ID resumes there.
//
// Usage:
//
//	exec := steps.NewExecutor(store, steps.WithLogger(log))
//
//	err := exec.Execute(ctx, "identity.user.created:"+eventID, func(ctx context.Context, run *steps.Run) error {
//	    if err := steps.Void(ctx, run, "verify-webhook", verify); err != nil {
//	        return err
//	    }
//	    userID, err := steps.Do(ctx, run, "create-user", createUser)
//	    if err != nil {
//	        return err
//	    }
//	    return steps.Void(ctx, run, "invalidate-cache", func(ctx context.Context) error {
//	        return invalidateUser(ctx, userID)
//	    })
//	})
package steps
