package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Memory is an in-memory Store used in tests. Safe for concurrent use.
type Memory struct {
	mu              sync.RWMutex
	users           map[string]User
	organizations   map[string]Organization
	userSettings    map[string]UserNotificationSettings
	orgUserSettings map[string]OrganizationUserSettings
	listings        map[string]JobListing
	applications    map[string]JobListingApplication
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:           make(map[string]User),
		organizations:   make(map[string]Organization),
		userSettings:    make(map[string]UserNotificationSettings),
		orgUserSettings: make(map[string]OrganizationUserSettings),
		listings:        make(map[string]JobListing),
		applications:    make(map[string]JobListingApplication),
	}
}

func orgUserKey(userID, orgID string) string { return userID + "/" + orgID }

func applicationKey(listingID, userID string) string { return listingID + "/" + userID }

func (m *Memory) UpsertUser(_ context.Context, user User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
	return nil
}

func (m *Memory) UpsertUserWithDefaults(_ context.Context, user User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
	if _, ok := m.userSettings[user.ID]; !ok {
		m.userSettings[user.ID] = UserNotificationSettings{UserID: user.ID}
	}
	return nil
}

func (m *Memory) DeleteUser(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	delete(m.userSettings, id)
	for key, s := range m.orgUserSettings {
		if s.UserID == id {
			delete(m.orgUserSettings, key)
		}
	}
	return nil
}

func (m *Memory) GetUser(_ context.Context, id string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (m *Memory) UpsertOrganization(_ context.Context, org Organization) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.organizations[org.ID] = org
	return nil
}

func (m *Memory) DeleteOrganization(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.organizations, id)
	for key, s := range m.orgUserSettings {
		if s.OrganizationID == id {
			delete(m.orgUserSettings, key)
		}
	}
	for listingID, listing := range m.listings {
		if listing.OrganizationID != id {
			continue
		}
		delete(m.listings, listingID)
		for key, app := range m.applications {
			if app.JobListingID == listingID {
				delete(m.applications, key)
			}
		}
	}
	return nil
}

func (m *Memory) GetOrganization(_ context.Context, id string) (Organization, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	org, ok := m.organizations[id]
	if !ok {
		return Organization{}, ErrNotFound
	}
	return org, nil
}

func (m *Memory) UpsertUserNotificationSettings(_ context.Context, settings UserNotificationSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userSettings[settings.UserID] = settings
	return nil
}

func (m *Memory) GetUserNotificationSettings(_ context.Context, userID string) (UserNotificationSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	settings, ok := m.userSettings[userID]
	if !ok {
		return UserNotificationSettings{}, ErrNotFound
	}
	return settings, nil
}

func (m *Memory) UpsertOrganizationUserSettings(_ context.Context, settings OrganizationUserSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orgUserSettings[orgUserKey(settings.UserID, settings.OrganizationID)] = settings
	return nil
}

func (m *Memory) DeleteOrganizationUserSettings(_ context.Context, userID, orgID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.orgUserSettings, orgUserKey(userID, orgID))
	return nil
}

func (m *Memory) GetOrganizationUserSettings(_ context.Context, userID, orgID string) (OrganizationUserSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	settings, ok := m.orgUserSettings[orgUserKey(userID, orgID)]
	if !ok {
		return OrganizationUserSettings{}, ErrNotFound
	}
	return settings, nil
}

func (m *Memory) UpsertJobListing(_ context.Context, listing JobListing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listings[listing.ID] = listing
	return nil
}

func (m *Memory) UpsertApplication(_ context.Context, application JobListingApplication) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applications[applicationKey(application.JobListingID, application.UserID)] = application
	return nil
}

func (m *Memory) ListJobListingRecipients(_ context.Context) ([]JobListingRecipient, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var recipients []JobListingRecipient
	for userID, settings := range m.userSettings {
		if !settings.NewJobEmailNotifications {
			continue
		}
		user, ok := m.users[userID]
		if !ok {
			continue
		}
		recipients = append(recipients, JobListingRecipient{
			UserID:   userID,
			Email:    user.Email,
			Name:     user.Name,
			AIPrompt: settings.AIPrompt,
		})
	}
	sort.Slice(recipients, func(i, j int) bool { return recipients[i].UserID < recipients[j].UserID })
	return recipients, nil
}

func (m *Memory) ListApplicationRecipients(_ context.Context) ([]ApplicationRecipient, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var recipients []ApplicationRecipient
	for _, settings := range m.orgUserSettings {
		if !settings.NewApplicationEmailNotifications {
			continue
		}
		user, ok := m.users[settings.UserID]
		if !ok {
			continue
		}
		recipients = append(recipients, ApplicationRecipient{
			UserID:         settings.UserID,
			OrganizationID: settings.OrganizationID,
			Email:          user.Email,
			Name:           user.Name,
			MinimumRating:  settings.MinimumRating,
		})
	}
	sort.Slice(recipients, func(i, j int) bool {
		if recipients[i].OrganizationID != recipients[j].OrganizationID {
			return recipients[i].OrganizationID < recipients[j].OrganizationID
		}
		return recipients[i].UserID < recipients[j].UserID
	})
	return recipients, nil
}

func (m *Memory) ListPublishedListingsSince(_ context.Context, since time.Time) ([]ListingSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var summaries []ListingSummary
	for _, listing := range m.listings {
		if listing.Status != ListingStatusPublished || listing.PostedAt == nil || listing.PostedAt.Before(since) {
			continue
		}
		summaries = append(summaries, ListingSummary{
			ID:                  listing.ID,
			OrganizationID:      listing.OrganizationID,
			OrganizationName:    m.organizations[listing.OrganizationID].Name,
			Title:               listing.Title,
			Description:         listing.Description,
			Wage:                listing.Wage,
			WageInterval:        listing.WageInterval,
			City:                listing.City,
			StateAbbreviation:   listing.StateAbbreviation,
			LocationRequirement: listing.LocationRequirement,
			ExperienceLevel:     listing.ExperienceLevel,
			Type:                listing.Type,
			PostedAt:            *listing.PostedAt,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		if !summaries[i].PostedAt.Equal(summaries[j].PostedAt) {
			return summaries[i].PostedAt.After(summaries[j].PostedAt)
		}
		return summaries[i].ID < summaries[j].ID
	})
	return summaries, nil
}

func (m *Memory) ListApplicationsSince(_ context.Context, since time.Time) ([]ApplicationSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var summaries []ApplicationSummary
	for _, app := range m.applications {
		if app.CreatedAt.Before(since) {
			continue
		}
		listing, ok := m.listings[app.JobListingID]
		if !ok {
			continue
		}
		summaries = append(summaries, ApplicationSummary{
			JobListingID:   app.JobListingID,
			OrganizationID: listing.OrganizationID,
			UserID:         app.UserID,
			ApplicantName:  m.users[app.UserID].Name,
			ListingTitle:   listing.Title,
			Rating:         app.Rating,
			CreatedAt:      app.CreatedAt,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		if !summaries[i].CreatedAt.Equal(summaries[j].CreatedAt) {
			return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
		}
		return summaries[i].JobListingID+summaries[i].UserID < summaries[j].JobListingID+summaries[j].UserID
	})
	return summaries, nil
}
