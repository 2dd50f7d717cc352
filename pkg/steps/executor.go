package steps

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
)

// Executor runs jobs as resumable step sequences against a Store.
type Executor struct {
	store  Store
	logger *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger for run lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewExecutor creates an executor backed by store.
func NewExecutor(store Store, opts ...Option) (*Executor, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	e := &Executor{
		store:  store,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Run is the handle steps are executed through. Steps within one run execute
// strictly in call order; runs with distinct IDs have no ordering guarantee
// and may execute concurrently.
type Run struct {
	id    string
	store Store
}

// ID returns the run's idempotency key.
func (r *Run) ID() string { return r.id }

// Execute runs fn under the run identified by runID.
//
// A run that already succeeded returns nil without invoking fn. A run that
// failed terminally returns ErrRunTerminated without invoking fn. Otherwise
// fn executes; on a terminal failure the run is recorded as permanently
// failed, on any other failure the run stays resumable and the error is
// returned for the caller's retry machinery.
func (e *Executor) Execute(ctx context.Context, runID string, fn func(ctx context.Context, run *Run) error) error {
	state, ok, err := e.store.GetRun(ctx, runID)
	if err != nil {
		return fmt.Errorf("steps: load run %s: %w", runID, err)
	}
	if ok {
		switch state.Status {
		case StatusSucceeded:
			e.logger.DebugContext(ctx, "run already succeeded", slog.String("run_id", runID))
			return nil
		case StatusFailed:
			return Terminal(fmt.Errorf("%w: %s: %s", ErrRunTerminated, runID, state.Reason))
		}
	}

	if err := e.store.SetRun(ctx, runID, RunState{Status: StatusRunning}); err != nil {
		return fmt.Errorf("steps: mark run %s running: %w", runID, err)
	}

	if err := fn(ctx, &Run{id: runID, store: e.store}); err != nil {
		if IsTerminal(err) {
			if serr := e.store.SetRun(ctx, runID, RunState{Status: StatusFailed, Reason: err.Error()}); serr != nil {
				return fmt.Errorf("steps: mark run %s failed: %w", runID, serr)
			}
			e.logger.ErrorContext(ctx, "run failed terminally",
				slog.String("run_id", runID),
				slog.Any("error", err),
			)
			return err
		}

		e.logger.WarnContext(ctx, "run failed, resumable",
			slog.String("run_id", runID),
			slog.Any("error", err),
		)
		return err
	}

	if err := e.store.SetRun(ctx, runID, RunState{Status: StatusSucceeded}); err != nil {
		return fmt.Errorf("steps: mark run %s succeeded: %w", runID, err)
	}

	e.logger.DebugContext(ctx, "run succeeded", slog.String("run_id", runID))
	return nil
}

// Do executes the named step exactly once per run. If the step already has a
// recorded success, its memoized result is decoded and returned without
// invoking fn. A failing fn leaves the step unrecorded so the run resumes
// here on re-execution.
func Do[T any](ctx context.Context, r *Run, name string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	raw, ok, err := r.store.GetStep(ctx, r.id, name)
	if err != nil {
		return zero, fmt.Errorf("steps: load step %s/%s: %w", r.id, name, err)
	}
	if ok {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return zero, Terminal(fmt.Errorf("%w: %s/%s: %v", ErrResultMismatch, r.id, name, err))
		}
		return v, nil
	}

	v, err := fn(ctx)
	if err != nil {
		return zero, err
	}

	result, err := json.Marshal(v)
	if err != nil {
		// Unmarshalable results are a programming error, not a transient one.
		return zero, Terminal(fmt.Errorf("steps: marshal result of %s/%s: %w", r.id, name, err))
	}

	if err := r.store.SetStep(ctx, r.id, name, result); err != nil {
		return zero, fmt.Errorf("steps: record step %s/%s: %w", r.id, name, err)
	}

	return v, nil
}

// Void executes a step that produces no result value.
func Void(ctx context.Context, r *Run, name string, fn func(ctx context.Context) error) error {
	_, err := Do(ctx, r, name, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}
