package store

import "time"

// User mirrors the identity provider's user record.
type User struct {
	ID        string
	Email     string
	Name      string
	ImageURL  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Organization mirrors the identity provider's organization record.
type Organization struct {
	ID        string
	Name      string
	ImageURL  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserNotificationSettings controls the per-user job-listing digest.
// AIPrompt, when non-empty, is a free-text filter applied by the semantic
// matcher; empty means every listing matches.
type UserNotificationSettings struct {
	UserID                   string
	NewJobEmailNotifications bool
	AIPrompt                 string
	UpdatedAt                time.Time
}

// OrganizationUserSettings controls the per-organization application digest
// for one member. MinimumRating is an inclusive threshold; nil means no
// threshold.
type OrganizationUserSettings struct {
	UserID                           string
	OrganizationID                   string
	NewApplicationEmailNotifications bool
	MinimumRating                    *int
	UpdatedAt                        time.Time
}

// Job listing status and wage interval values.
const (
	ListingStatusDraft     = "draft"
	ListingStatusPublished = "published"
	ListingStatusDelisted  = "delisted"

	WageIntervalHourly = "hourly"
	WageIntervalYearly = "yearly"
)

// JobListing is a posting owned by an organization. Description is markdown.
type JobListing struct {
	ID                  string
	OrganizationID      string
	Title               string
	Description         string
	Wage                *int
	WageInterval        string
	City                string
	StateAbbreviation   string
	LocationRequirement string
	ExperienceLevel     string
	Type                string
	Status              string
	PostedAt            *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// JobListingApplication is keyed by (listing, applicant). Rating is 1..5,
// nil until reviewed.
type JobListingApplication struct {
	JobListingID string
	UserID       string
	CoverLetter  string
	Rating       *int
	Stage        string
	CreatedAt    time.Time
}

// JobListingRecipient is a user who opted into the job-listing digest.
type JobListingRecipient struct {
	UserID   string
	Email    string
	Name     string
	AIPrompt string
}

// ApplicationRecipient is an organization member who opted into the
// application digest for that organization.
type ApplicationRecipient struct {
	UserID         string
	OrganizationID string
	Email          string
	Name           string
	MinimumRating  *int
}

// ListingSummary is a published listing denormalized with its organization
// name for digest rendering.
type ListingSummary struct {
	ID                  string
	OrganizationID      string
	OrganizationName    string
	Title               string
	Description         string
	Wage                *int
	WageInterval        string
	City                string
	StateAbbreviation   string
	LocationRequirement string
	ExperienceLevel     string
	Type                string
	PostedAt            time.Time
}

// ApplicationSummary is a recent application denormalized with applicant
// name and listing title for digest rendering.
type ApplicationSummary struct {
	JobListingID   string
	OrganizationID string
	UserID         string
	ApplicantName  string
	ListingTitle   string
	Rating         *int
	CreatedAt      time.Time
}
