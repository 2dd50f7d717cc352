package store_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hirewire/internal/store"
	"github.com/dmitrymomot/hirewire/pkg/tagcache"
)

// countingStore counts reads hitting the underlying store.
type countingStore struct {
	store.Store
	userReads    atomic.Int64
	listingReads atomic.Int64
}

func (s *countingStore) GetUser(ctx context.Context, id string) (store.User, error) {
	s.userReads.Add(1)
	return s.Store.GetUser(ctx, id)
}

func (s *countingStore) ListPublishedListingsSince(ctx context.Context, since time.Time) ([]store.ListingSummary, error) {
	s.listingReads.Add(1)
	return s.Store.ListPublishedListingsSince(ctx, since)
}

func TestCachedReads(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	newCached := func(t *testing.T) (*countingStore, *store.Cached, *tagcache.Cache[any]) {
		t.Helper()
		cache := tagcache.New[any](tagcache.WithCleanupInterval(0))
		t.Cleanup(func() { _ = cache.Close() })
		inner := &countingStore{Store: store.NewMemory()}
		return inner, store.NewCached(inner, cache), cache
	}

	t.Run("second read served from cache", func(t *testing.T) {
		t.Parallel()
		inner, cached, _ := newCached(t)
		require.NoError(t, inner.UpsertUser(ctx, store.User{ID: "u1", Name: "Ada"}))

		for range 3 {
			user, err := cached.GetUser(ctx, "u1")
			require.NoError(t, err)
			require.Equal(t, "Ada", user.Name)
		}
		require.EqualValues(t, 1, inner.userReads.Load())
	})

	t.Run("id invalidation refreshes the read", func(t *testing.T) {
		t.Parallel()
		inner, cached, cache := newCached(t)
		require.NoError(t, inner.UpsertUser(ctx, store.User{ID: "u1", Name: "Ada"}))

		_, err := cached.GetUser(ctx, "u1")
		require.NoError(t, err)

		require.NoError(t, inner.UpsertUser(ctx, store.User{ID: "u1", Name: "Ada L."}))
		require.NoError(t, cache.Invalidate(ctx, store.UserTag("u1")))

		user, err := cached.GetUser(ctx, "u1")
		require.NoError(t, err)
		require.Equal(t, "Ada L.", user.Name)
		require.EqualValues(t, 2, inner.userReads.Load())
	})

	t.Run("global invalidation covers listing queries", func(t *testing.T) {
		t.Parallel()
		inner, cached, cache := newCached(t)
		since := time.Now().Add(-72 * time.Hour).Truncate(time.Second)

		_, err := cached.ListPublishedListingsSince(ctx, since)
		require.NoError(t, err)
		_, err = cached.ListPublishedListingsSince(ctx, since)
		require.NoError(t, err)
		require.EqualValues(t, 1, inner.listingReads.Load())

		require.NoError(t, cache.Invalidate(ctx, tagcache.Global(store.ClassJobListings)))

		_, err = cached.ListPublishedListingsSince(ctx, since)
		require.NoError(t, err)
		require.EqualValues(t, 2, inner.listingReads.Load())
	})

	t.Run("load errors are not cached", func(t *testing.T) {
		t.Parallel()
		inner, cached, _ := newCached(t)

		_, err := cached.GetUser(ctx, "missing")
		require.ErrorIs(t, err, store.ErrNotFound)

		require.NoError(t, inner.UpsertUser(ctx, store.User{ID: "missing", Name: "Now here"}))
		user, err := cached.GetUser(ctx, "missing")
		require.NoError(t, err)
		require.Equal(t, "Now here", user.Name)
	})
}
