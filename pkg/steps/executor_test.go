package steps_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hirewire/pkg/steps"
)

func newExecutor(t *testing.T) (*steps.Executor, *steps.MemoryStore) {
	t.Helper()

	store := steps.NewMemoryStore()
	exec, err := steps.NewExecutor(store, steps.WithLogger(slog.Default()))
	require.NoError(t, err)
	return exec, store
}

func TestNewExecutor(t *testing.T) {
	t.Parallel()

	_, err := steps.NewExecutor(nil)
	require.ErrorIs(t, err, steps.ErrStoreRequired)
}

func TestExecutor_Execute(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("successful run executes steps in order", func(t *testing.T) {
		t.Parallel()

		exec, _ := newExecutor(t)

		var order []string
		err := exec.Execute(ctx, "run-1", func(ctx context.Context, run *steps.Run) error {
			if err := steps.Void(ctx, run, "first", func(context.Context) error {
				order = append(order, "first")
				return nil
			}); err != nil {
				return err
			}
			return steps.Void(ctx, run, "second", func(context.Context) error {
				order = append(order, "second")
				return nil
			})
		})
		require.NoError(t, err)
		require.Equal(t, []string{"first", "second"}, order)
	})

	t.Run("completed run is not re-executed", func(t *testing.T) {
		t.Parallel()

		exec, _ := newExecutor(t)

		var calls int
		job := func(ctx context.Context, run *steps.Run) error {
			return steps.Void(ctx, run, "only", func(context.Context) error {
				calls++
				return nil
			})
		}

		require.NoError(t, exec.Execute(ctx, "dup", job))
		require.NoError(t, exec.Execute(ctx, "dup", job))
		require.Equal(t, 1, calls)
	})

	t.Run("retriable failure resumes at the failed step", func(t *testing.T) {
		t.Parallel()

		exec, _ := newExecutor(t)

		var first, second, third int
		flaky := errors.New("connection reset")
		job := func(ctx context.Context, run *steps.Run) error {
			if err := steps.Void(ctx, run, "step-1", func(context.Context) error {
				first++
				return nil
			}); err != nil {
				return err
			}
			if err := steps.Void(ctx, run, "step-2", func(context.Context) error {
				second++
				if second == 1 {
					return flaky
				}
				return nil
			}); err != nil {
				return err
			}
			return steps.Void(ctx, run, "step-3", func(context.Context) error {
				third++
				return nil
			})
		}

		err := exec.Execute(ctx, "resume", job)
		require.ErrorIs(t, err, flaky)
		require.Equal(t, 1, first)
		require.Equal(t, 0, third)

		require.NoError(t, exec.Execute(ctx, "resume", job))
		require.Equal(t, 1, first, "step 1 must not re-execute")
		require.Equal(t, 2, second)
		require.Equal(t, 1, third)
	})

	t.Run("terminal failure is never retried", func(t *testing.T) {
		t.Parallel()

		exec, _ := newExecutor(t)

		var calls int
		job := func(ctx context.Context, run *steps.Run) error {
			return steps.Void(ctx, run, "verify", func(context.Context) error {
				calls++
				return steps.Terminalf("invalid signature")
			})
		}

		err := exec.Execute(ctx, "terminal", job)
		require.True(t, steps.IsTerminal(err))

		err = exec.Execute(ctx, "terminal", job)
		require.ErrorIs(t, err, steps.ErrRunTerminated)
		require.True(t, steps.IsTerminal(err))
		require.Equal(t, 1, calls)
	})

	t.Run("distinct run IDs do not share step results", func(t *testing.T) {
		t.Parallel()

		exec, _ := newExecutor(t)

		var calls int
		job := func(ctx context.Context, run *steps.Run) error {
			return steps.Void(ctx, run, "work", func(context.Context) error {
				calls++
				return nil
			})
		}

		require.NoError(t, exec.Execute(ctx, "a", job))
		require.NoError(t, exec.Execute(ctx, "b", job))
		require.Equal(t, 2, calls)
	})
}

func TestDo_MemoizesResult(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	exec, _ := newExecutor(t)

	transient := errors.New("timeout")
	var creates, attempt int
	var seen []string

	job := func(ctx context.Context, run *steps.Run) error {
		userID, err := steps.Do(ctx, run, "create-user", func(context.Context) (string, error) {
			creates++
			return "u1", nil
		})
		if err != nil {
			return err
		}
		seen = append(seen, userID)

		attempt++
		if attempt == 1 {
			return transient
		}
		return nil
	}

	require.ErrorIs(t, exec.Execute(ctx, "memo", job), transient)
	require.NoError(t, exec.Execute(ctx, "memo", job))

	// The second pass reused the memoized value instead of re-creating.
	require.Equal(t, 1, creates)
	require.Equal(t, []string{"u1", "u1"}, seen)
}

func TestTerminal(t *testing.T) {
	t.Parallel()

	require.Nil(t, steps.Terminal(nil))
	require.False(t, steps.IsTerminal(errors.New("plain")))
	require.True(t, steps.IsTerminal(steps.Terminal(errors.New("bad"))))

	wrapped := steps.Terminal(errors.New("bad payload"))
	require.ErrorContains(t, wrapped, "bad payload")
}
