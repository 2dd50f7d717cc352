package settings

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/hirewire/internal/store"
	"github.com/dmitrymomot/hirewire/pkg/tagcache"
)

// Service applies preference updates and keeps cached settings reads
// coherent by invalidating their tags after each write.
type Service struct {
	store  store.Store
	cache  *tagcache.Cache[any]
	logger *slog.Logger
}

// Option configures the service.
type Option func(*Service)

// WithLogger sets the service's logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates the preference-update service.
func NewService(st store.Store, cache *tagcache.Cache[any], opts ...Option) (*Service, error) {
	if st == nil {
		return nil, ErrStoreRequired
	}
	if cache == nil {
		return nil, ErrCacheRequired
	}

	s := &Service{
		store:  st,
		cache:  cache,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// UserNotificationParams are the fields a user may change on their
// job-listing digest preference.
type UserNotificationParams struct {
	NewJobEmailNotifications bool
	AIPrompt                 string
}

// UpdateUserNotificationSettings writes the caller's digest preference. A
// whitespace-only prompt is normalized to empty, which means every listing
// matches.
func (s *Service) UpdateUserNotificationSettings(ctx context.Context, userID string, params UserNotificationParams) error {
	if userID == "" {
		return &PermissionError{Action: "update user notification settings"}
	}

	err := s.store.UpsertUserNotificationSettings(ctx, store.UserNotificationSettings{
		UserID:                   userID,
		NewJobEmailNotifications: params.NewJobEmailNotifications,
		AIPrompt:                 strings.TrimSpace(params.AIPrompt),
	})
	if err != nil {
		return err
	}

	if err := s.invalidate(ctx,
		store.UserSettingsTag(userID),
		tagcache.Global(store.ClassUserSettings),
	); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "updated user notification settings", slog.String("user_id", userID))
	return nil
}

// OrganizationUserParams are the fields a member may change on their
// application digest preference for one organization.
type OrganizationUserParams struct {
	NewApplicationEmailNotifications bool
	MinimumRating                    *int
}

// UpdateOrganizationUserSettings writes the caller's per-organization
// application digest preference.
func (s *Service) UpdateOrganizationUserSettings(ctx context.Context, userID, orgID string, params OrganizationUserParams) error {
	if userID == "" || orgID == "" {
		return &PermissionError{Action: "update organization notification settings"}
	}
	if params.MinimumRating != nil && (*params.MinimumRating < 1 || *params.MinimumRating > 5) {
		return ErrInvalidRating
	}

	err := s.store.UpsertOrganizationUserSettings(ctx, store.OrganizationUserSettings{
		UserID:                           userID,
		OrganizationID:                   orgID,
		NewApplicationEmailNotifications: params.NewApplicationEmailNotifications,
		MinimumRating:                    params.MinimumRating,
	})
	if err != nil {
		return err
	}

	if err := s.invalidate(ctx,
		store.OrgUserSettingsTag(orgID),
		tagcache.Global(store.ClassOrgUserSettings),
	); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "updated organization user settings",
		slog.String("user_id", userID),
		slog.String("organization_id", orgID),
	)
	return nil
}

func (s *Service) invalidate(ctx context.Context, tags ...tagcache.Tag) error {
	for _, tag := range tags {
		if err := s.cache.Invalidate(ctx, tag); err != nil {
			return err
		}
	}
	return nil
}
