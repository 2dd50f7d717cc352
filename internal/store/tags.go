package store

import "github.com/dmitrymomot/hirewire/pkg/tagcache"

// Entity classes used as cache-tag namespaces. Reconciliation invalidates
// against the same classes the cached reads are registered under, so the
// two sides must share these constants.
const (
	ClassUsers           = "users"
	ClassOrganizations   = "organizations"
	ClassUserSettings    = "user_notification_settings"
	ClassOrgUserSettings = "organization_user_settings"
	ClassJobListings     = "job_listings"
	ClassApplications    = "job_listing_applications"
)

func UserTag(id string) tagcache.Tag { return tagcache.IDScoped(ClassUsers, id) }

func OrganizationTag(id string) tagcache.Tag { return tagcache.IDScoped(ClassOrganizations, id) }

func UserSettingsTag(userID string) tagcache.Tag {
	return tagcache.IDScoped(ClassUserSettings, userID)
}

func OrgUserSettingsTag(orgID string) tagcache.Tag {
	return tagcache.OrgScoped(ClassOrgUserSettings, orgID)
}

func OrgListingsTag(orgID string) tagcache.Tag {
	return tagcache.OrgScoped(ClassJobListings, orgID)
}

func OrgApplicationsTag(orgID string) tagcache.Tag {
	return tagcache.OrgScoped(ClassApplications, orgID)
}
