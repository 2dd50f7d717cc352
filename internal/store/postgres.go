package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/hirewire/pkg/db"
)

// Postgres implements Store over a pgx pool with raw SQL.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres-backed store.
func NewPostgres(pool *pgxpool.Pool) (*Postgres, error) {
	if pool == nil {
		return nil, ErrPoolRequired
	}
	return &Postgres{pool: pool}, nil
}

const upsertUserSQL = `
	INSERT INTO users (id, email, name, image_url, created_at, updated_at)
	VALUES ($1, $2, $3, $4, now(), now())
	ON CONFLICT (id) DO UPDATE
	SET email = EXCLUDED.email, name = EXCLUDED.name,
	    image_url = EXCLUDED.image_url, updated_at = now()`

func (s *Postgres) UpsertUser(ctx context.Context, user User) error {
	_, err := s.pool.Exec(ctx, upsertUserSQL, user.ID, user.Email, user.Name, user.ImageURL)
	return err
}

func (s *Postgres) UpsertUserWithDefaults(ctx context.Context, user User) error {
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, upsertUserSQL, user.ID, user.Email, user.Name, user.ImageURL); err != nil {
			return err
		}
		// Defaults only on first sight of the user; a redelivered event must
		// not reset settings the user has since changed.
		_, err := tx.Exec(ctx, `
			INSERT INTO user_notification_settings (user_id, new_job_email_notifications, ai_prompt, updated_at)
			VALUES ($1, false, NULL, now())
			ON CONFLICT (user_id) DO NOTHING`, user.ID)
		return err
	})
}

func (s *Postgres) DeleteUser(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

func (s *Postgres) GetUser(ctx context.Context, id string) (User, error) {
	var user User
	err := s.pool.QueryRow(ctx, `
		SELECT id, email, name, COALESCE(image_url, ''), created_at, updated_at
		FROM users WHERE id = $1`, id,
	).Scan(&user.ID, &user.Email, &user.Name, &user.ImageURL, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return user, err
}

func (s *Postgres) UpsertOrganization(ctx context.Context, org Organization) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO organizations (id, name, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, image_url = EXCLUDED.image_url, updated_at = now()`,
		org.ID, org.Name, org.ImageURL)
	return err
}

func (s *Postgres) DeleteOrganization(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	return err
}

func (s *Postgres) GetOrganization(ctx context.Context, id string) (Organization, error) {
	var org Organization
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, COALESCE(image_url, ''), created_at, updated_at
		FROM organizations WHERE id = $1`, id,
	).Scan(&org.ID, &org.Name, &org.ImageURL, &org.CreatedAt, &org.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Organization{}, ErrNotFound
	}
	return org, err
}

func (s *Postgres) UpsertUserNotificationSettings(ctx context.Context, settings UserNotificationSettings) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO user_notification_settings (user_id, new_job_email_notifications, ai_prompt, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), now())
		ON CONFLICT (user_id) DO UPDATE
		SET new_job_email_notifications = EXCLUDED.new_job_email_notifications,
		    ai_prompt = EXCLUDED.ai_prompt, updated_at = now()`,
		settings.UserID, settings.NewJobEmailNotifications, settings.AIPrompt)
	return err
}

func (s *Postgres) GetUserNotificationSettings(ctx context.Context, userID string) (UserNotificationSettings, error) {
	var settings UserNotificationSettings
	err := s.pool.QueryRow(ctx, `
		SELECT user_id, new_job_email_notifications, COALESCE(ai_prompt, ''), updated_at
		FROM user_notification_settings WHERE user_id = $1`, userID,
	).Scan(&settings.UserID, &settings.NewJobEmailNotifications, &settings.AIPrompt, &settings.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return UserNotificationSettings{}, ErrNotFound
	}
	return settings, err
}

func (s *Postgres) UpsertOrganizationUserSettings(ctx context.Context, settings OrganizationUserSettings) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO organization_user_settings
			(user_id, organization_id, new_application_email_notifications, minimum_rating, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (user_id, organization_id) DO UPDATE
		SET new_application_email_notifications = EXCLUDED.new_application_email_notifications,
		    minimum_rating = EXCLUDED.minimum_rating, updated_at = now()`,
		settings.UserID, settings.OrganizationID,
		settings.NewApplicationEmailNotifications, settings.MinimumRating)
	return err
}

func (s *Postgres) DeleteOrganizationUserSettings(ctx context.Context, userID, orgID string) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM organization_user_settings
		WHERE user_id = $1 AND organization_id = $2`, userID, orgID)
	return err
}

func (s *Postgres) GetOrganizationUserSettings(ctx context.Context, userID, orgID string) (OrganizationUserSettings, error) {
	var settings OrganizationUserSettings
	err := s.pool.QueryRow(ctx, `
		SELECT user_id, organization_id, new_application_email_notifications, minimum_rating, updated_at
		FROM organization_user_settings
		WHERE user_id = $1 AND organization_id = $2`, userID, orgID,
	).Scan(&settings.UserID, &settings.OrganizationID,
		&settings.NewApplicationEmailNotifications, &settings.MinimumRating, &settings.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return OrganizationUserSettings{}, ErrNotFound
	}
	return settings, err
}

func (s *Postgres) UpsertJobListing(ctx context.Context, listing JobListing) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO job_listings
			(id, organization_id, title, description, wage, wage_interval, city,
			 state_abbreviation, location_requirement, experience_level, type,
			 status, posted_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), $9, $10, $11, $12, $13, now(), now())
		ON CONFLICT (id) DO UPDATE
		SET title = EXCLUDED.title, description = EXCLUDED.description,
		    wage = EXCLUDED.wage, wage_interval = EXCLUDED.wage_interval,
		    city = EXCLUDED.city, state_abbreviation = EXCLUDED.state_abbreviation,
		    location_requirement = EXCLUDED.location_requirement,
		    experience_level = EXCLUDED.experience_level, type = EXCLUDED.type,
		    status = EXCLUDED.status, posted_at = EXCLUDED.posted_at, updated_at = now()`,
		listing.ID, listing.OrganizationID, listing.Title, listing.Description,
		listing.Wage, listing.WageInterval, listing.City, listing.StateAbbreviation,
		listing.LocationRequirement, listing.ExperienceLevel, listing.Type,
		listing.Status, listing.PostedAt)
	return err
}

func (s *Postgres) UpsertApplication(ctx context.Context, application JobListingApplication) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO job_listing_applications
			(job_listing_id, user_id, cover_letter, rating, stage, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (job_listing_id, user_id) DO UPDATE
		SET cover_letter = EXCLUDED.cover_letter, rating = EXCLUDED.rating,
		    stage = EXCLUDED.stage`,
		application.JobListingID, application.UserID, application.CoverLetter,
		application.Rating, application.Stage)
	return err
}

func (s *Postgres) ListJobListingRecipients(ctx context.Context) ([]JobListingRecipient, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT u.id, u.email, u.name, COALESCE(s.ai_prompt, '')
		FROM user_notification_settings s
		JOIN users u ON u.id = s.user_id
		WHERE s.new_job_email_notifications
		ORDER BY u.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipients []JobListingRecipient
	for rows.Next() {
		var r JobListingRecipient
		if err := rows.Scan(&r.UserID, &r.Email, &r.Name, &r.AIPrompt); err != nil {
			return nil, err
		}
		recipients = append(recipients, r)
	}
	return recipients, rows.Err()
}

func (s *Postgres) ListApplicationRecipients(ctx context.Context) ([]ApplicationRecipient, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT s.user_id, s.organization_id, u.email, u.name, s.minimum_rating
		FROM organization_user_settings s
		JOIN users u ON u.id = s.user_id
		WHERE s.new_application_email_notifications
		ORDER BY s.organization_id, s.user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipients []ApplicationRecipient
	for rows.Next() {
		var r ApplicationRecipient
		if err := rows.Scan(&r.UserID, &r.OrganizationID, &r.Email, &r.Name, &r.MinimumRating); err != nil {
			return nil, err
		}
		recipients = append(recipients, r)
	}
	return recipients, rows.Err()
}

func (s *Postgres) ListPublishedListingsSince(ctx context.Context, since time.Time) ([]ListingSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT l.id, l.organization_id, o.name, l.title, l.description, l.wage, l.wage_interval,
		       COALESCE(l.city, ''), COALESCE(l.state_abbreviation, ''),
		       l.location_requirement, l.experience_level, l.type, l.posted_at
		FROM job_listings l
		JOIN organizations o ON o.id = l.organization_id
		WHERE l.status = $1 AND l.posted_at >= $2
		ORDER BY l.posted_at DESC, l.id`, ListingStatusPublished, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []ListingSummary
	for rows.Next() {
		var l ListingSummary
		if err := rows.Scan(&l.ID, &l.OrganizationID, &l.OrganizationName, &l.Title,
			&l.Description, &l.Wage, &l.WageInterval, &l.City, &l.StateAbbreviation,
			&l.LocationRequirement, &l.ExperienceLevel, &l.Type, &l.PostedAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, l)
	}
	return summaries, rows.Err()
}

func (s *Postgres) ListApplicationsSince(ctx context.Context, since time.Time) ([]ApplicationSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT a.job_listing_id, l.organization_id, a.user_id, u.name, l.title,
		       a.rating, a.created_at
		FROM job_listing_applications a
		JOIN job_listings l ON l.id = a.job_listing_id
		JOIN users u ON u.id = a.user_id
		WHERE a.created_at >= $1
		ORDER BY a.created_at DESC, a.job_listing_id, a.user_id`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []ApplicationSummary
	for rows.Next() {
		var a ApplicationSummary
		if err := rows.Scan(&a.JobListingID, &a.OrganizationID, &a.UserID,
			&a.ApplicantName, &a.ListingTitle, &a.Rating, &a.CreatedAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, a)
	}
	return summaries, rows.Err()
}
