package store

import (
	"context"
	"time"
)

// Store is the persistence contract shared by the Postgres and memory
// implementations. Every write is an upsert or a conditioned delete so that
// duplicate execution of the same mutation is a no-op.
type Store interface {
	UpsertUser(ctx context.Context, user User) error
	// UpsertUserWithDefaults writes the user and provisions the default
	// notification settings row in one transaction.
	UpsertUserWithDefaults(ctx context.Context, user User) error
	DeleteUser(ctx context.Context, id string) error
	GetUser(ctx context.Context, id string) (User, error)

	UpsertOrganization(ctx context.Context, org Organization) error
	DeleteOrganization(ctx context.Context, id string) error
	GetOrganization(ctx context.Context, id string) (Organization, error)

	UpsertUserNotificationSettings(ctx context.Context, settings UserNotificationSettings) error
	GetUserNotificationSettings(ctx context.Context, userID string) (UserNotificationSettings, error)

	UpsertOrganizationUserSettings(ctx context.Context, settings OrganizationUserSettings) error
	DeleteOrganizationUserSettings(ctx context.Context, userID, orgID string) error
	GetOrganizationUserSettings(ctx context.Context, userID, orgID string) (OrganizationUserSettings, error)

	UpsertJobListing(ctx context.Context, listing JobListing) error
	UpsertApplication(ctx context.Context, application JobListingApplication) error

	ListJobListingRecipients(ctx context.Context) ([]JobListingRecipient, error)
	ListApplicationRecipients(ctx context.Context) ([]ApplicationRecipient, error)
	ListPublishedListingsSince(ctx context.Context, since time.Time) ([]ListingSummary, error)
	ListApplicationsSince(ctx context.Context, since time.Time) ([]ApplicationSummary, error)
}
