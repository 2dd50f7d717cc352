package store

import (
	"context"
	"time"

	"github.com/dmitrymomot/hirewire/pkg/tagcache"
)

// Cached wraps a Store with tag-scoped read-through caching for the reads
// that back digests and settings screens. Writes pass straight through:
// invalidation is owned by the mutation paths (webhook reconciliation and
// the settings service), which invalidate against the same cache.
type Cached struct {
	Store
	cache *tagcache.Cache[any]
}

// NewCached wraps inner with read-through caching backed by cache.
func NewCached(inner Store, cache *tagcache.Cache[any]) *Cached {
	return &Cached{Store: inner, cache: cache}
}

func (c *Cached) GetUser(ctx context.Context, id string) (User, error) {
	return cachedGet(ctx, c.cache, "user:"+id, func(ctx context.Context) (User, []tagcache.Tag, error) {
		user, err := c.Store.GetUser(ctx, id)
		return user, []tagcache.Tag{UserTag(id)}, err
	})
}

func (c *Cached) GetOrganization(ctx context.Context, id string) (Organization, error) {
	return cachedGet(ctx, c.cache, "organization:"+id, func(ctx context.Context) (Organization, []tagcache.Tag, error) {
		org, err := c.Store.GetOrganization(ctx, id)
		return org, []tagcache.Tag{OrganizationTag(id)}, err
	})
}

func (c *Cached) GetUserNotificationSettings(ctx context.Context, userID string) (UserNotificationSettings, error) {
	return cachedGet(ctx, c.cache, "user-settings:"+userID, func(ctx context.Context) (UserNotificationSettings, []tagcache.Tag, error) {
		settings, err := c.Store.GetUserNotificationSettings(ctx, userID)
		return settings, []tagcache.Tag{UserSettingsTag(userID)}, err
	})
}

func (c *Cached) GetOrganizationUserSettings(ctx context.Context, userID, orgID string) (OrganizationUserSettings, error) {
	return cachedGet(ctx, c.cache, "org-user-settings:"+userID+":"+orgID, func(ctx context.Context) (OrganizationUserSettings, []tagcache.Tag, error) {
		settings, err := c.Store.GetOrganizationUserSettings(ctx, userID, orgID)
		return settings, []tagcache.Tag{OrgUserSettingsTag(orgID)}, err
	})
}

func (c *Cached) ListPublishedListingsSince(ctx context.Context, since time.Time) ([]ListingSummary, error) {
	key := "listings-since:" + since.UTC().Format(time.RFC3339)
	return cachedGet(ctx, c.cache, key, func(ctx context.Context) ([]ListingSummary, []tagcache.Tag, error) {
		listings, err := c.Store.ListPublishedListingsSince(ctx, since)
		return listings, []tagcache.Tag{tagcache.Global(ClassJobListings)}, err
	})
}

// cachedGet adapts a typed loader to the cache's any-valued GetOrSet.
func cachedGet[T any](ctx context.Context, cache *tagcache.Cache[any], key string, load func(ctx context.Context) (T, []tagcache.Tag, error)) (T, error) {
	v, err := cache.GetOrSet(ctx, key, func(ctx context.Context) (any, []tagcache.Tag, error) {
		val, tags, err := load(ctx)
		if err != nil {
			return nil, nil, err
		}
		return val, tags, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
