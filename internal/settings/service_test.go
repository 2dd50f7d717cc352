package settings_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hirewire/internal/settings"
	"github.com/dmitrymomot/hirewire/internal/store"
	"github.com/dmitrymomot/hirewire/pkg/tagcache"
)

func newService(t *testing.T) (*settings.Service, *store.Memory, *tagcache.Cache[any]) {
	t.Helper()

	cache := tagcache.New[any](tagcache.WithCleanupInterval(0))
	t.Cleanup(func() { _ = cache.Close() })

	s := store.NewMemory()
	svc, err := settings.NewService(s, cache)
	require.NoError(t, err)
	return svc, s, cache
}

func TestUpdateUserNotificationSettings(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("persists and invalidates cached settings", func(t *testing.T) {
		t.Parallel()
		svc, s, cache := newService(t)
		require.NoError(t, cache.Set(ctx, "user-settings:u1", "stale", 0, store.UserSettingsTag("u1")))

		err := svc.UpdateUserNotificationSettings(ctx, "u1", settings.UserNotificationParams{
			NewJobEmailNotifications: true,
			AIPrompt:                 "remote golang",
		})
		require.NoError(t, err)

		saved, err := s.GetUserNotificationSettings(ctx, "u1")
		require.NoError(t, err)
		require.True(t, saved.NewJobEmailNotifications)
		require.Equal(t, "remote golang", saved.AIPrompt)

		_, err = cache.Get(ctx, "user-settings:u1")
		require.ErrorIs(t, err, tagcache.ErrNotFound)
	})

	t.Run("whitespace prompt is normalized to empty", func(t *testing.T) {
		t.Parallel()
		svc, s, _ := newService(t)

		err := svc.UpdateUserNotificationSettings(ctx, "u1", settings.UserNotificationParams{
			NewJobEmailNotifications: true,
			AIPrompt:                 "   \n\t ",
		})
		require.NoError(t, err)

		saved, err := s.GetUserNotificationSettings(ctx, "u1")
		require.NoError(t, err)
		require.Empty(t, saved.AIPrompt)
	})

	t.Run("unresolved caller gets a permission error", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newService(t)

		err := svc.UpdateUserNotificationSettings(ctx, "", settings.UserNotificationParams{})
		require.True(t, settings.IsPermissionError(err))
	})
}

func TestUpdateOrganizationUserSettings(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("persists threshold and invalidates cache", func(t *testing.T) {
		t.Parallel()
		svc, s, cache := newService(t)
		require.NoError(t, cache.Set(ctx, "org-user-settings:u1:org1", "stale", 0, store.OrgUserSettingsTag("org1")))

		rating := 3
		err := svc.UpdateOrganizationUserSettings(ctx, "u1", "org1", settings.OrganizationUserParams{
			NewApplicationEmailNotifications: true,
			MinimumRating:                    &rating,
		})
		require.NoError(t, err)

		saved, err := s.GetOrganizationUserSettings(ctx, "u1", "org1")
		require.NoError(t, err)
		require.True(t, saved.NewApplicationEmailNotifications)
		require.Equal(t, 3, *saved.MinimumRating)

		_, err = cache.Get(ctx, "org-user-settings:u1:org1")
		require.ErrorIs(t, err, tagcache.ErrNotFound)
	})

	t.Run("rejects out-of-range rating", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newService(t)

		rating := 6
		err := svc.UpdateOrganizationUserSettings(ctx, "u1", "org1", settings.OrganizationUserParams{
			MinimumRating: &rating,
		})
		require.ErrorIs(t, err, settings.ErrInvalidRating)
	})

	t.Run("unresolved organization gets a permission error", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newService(t)

		err := svc.UpdateOrganizationUserSettings(ctx, "u1", "", settings.OrganizationUserParams{})
		require.True(t, settings.IsPermissionError(err))
	})
}
