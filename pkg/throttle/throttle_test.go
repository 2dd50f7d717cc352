package throttle_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hirewire/pkg/throttle"
)

func TestMemory_Take(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("caps executions per window without drops", func(t *testing.T) {
		t.Parallel()

		now := time.Date(2026, 8, 30, 7, 0, 0, 0, time.UTC)
		lim := throttle.NewMemory(
			throttle.Limit{Events: 10, Window: time.Minute},
			throttle.WithClock(func() time.Time { return now }),
		)

		var allowed, delayed int
		for range 15 {
			if err := lim.Take(ctx, "digest:user"); err != nil {
				after, ok := throttle.RetryAfter(err)
				require.True(t, ok)
				require.Equal(t, time.Minute, after)
				delayed++
				continue
			}
			allowed++
		}
		require.Equal(t, 10, allowed)
		require.Equal(t, 5, delayed)

		// After the window rolls over the remaining 5 all fit.
		now = now.Add(time.Minute)
		for range 5 {
			require.NoError(t, lim.Take(ctx, "digest:user"))
		}
	})

	t.Run("keys are isolated", func(t *testing.T) {
		t.Parallel()

		lim := throttle.NewMemory(throttle.Limit{Events: 1, Window: time.Minute})

		require.NoError(t, lim.Take(ctx, "digest:user"))
		require.Error(t, lim.Take(ctx, "digest:user"))
		require.NoError(t, lim.Take(ctx, "digest:org"))
	})

	t.Run("retry-after shrinks as the window ages", func(t *testing.T) {
		t.Parallel()

		now := time.Date(2026, 8, 30, 7, 0, 0, 0, time.UTC)
		lim := throttle.NewMemory(
			throttle.Limit{Events: 1, Window: time.Minute},
			throttle.WithClock(func() time.Time { return now }),
		)

		require.NoError(t, lim.Take(ctx, "k"))

		now = now.Add(45 * time.Second)
		err := lim.Take(ctx, "k")
		after, ok := throttle.RetryAfter(err)
		require.True(t, ok)
		require.Equal(t, 15*time.Second, after)
	})
}

func TestRetryAfter(t *testing.T) {
	t.Parallel()

	_, ok := throttle.RetryAfter(context.Canceled)
	require.False(t, ok)

	after, ok := throttle.RetryAfter(&throttle.RetryAfterError{Key: "k", After: time.Second})
	require.True(t, ok)
	require.Equal(t, time.Second, after)
}

func TestNewRedis(t *testing.T) {
	t.Parallel()

	_, err := throttle.NewRedis(nil, throttle.Limit{Events: 1, Window: time.Minute})
	require.ErrorIs(t, err, throttle.ErrClientRequired)
}
