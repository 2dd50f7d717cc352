package identity

import (
	"encoding/json"
	"strings"

	"github.com/dmitrymomot/hirewire/internal/store"
	"github.com/dmitrymomot/hirewire/pkg/steps"
)

// Event types delivered by the identity provider.
const (
	EventUserCreated = "identity.user.created"
	EventUserUpdated = "identity.user.updated"
	EventUserDeleted = "identity.user.deleted"

	EventOrganizationCreated = "identity.organization.created"
	EventOrganizationUpdated = "identity.organization.updated"
	EventOrganizationDeleted = "identity.organization.deleted"

	EventMembershipCreated = "identity.membership.created"
	EventMembershipDeleted = "identity.membership.deleted"
)

// Delivery is one webhook delivery as enqueued by the ingress handler: the
// raw body plus the headers needed to verify its signature. The body is kept
// raw so the verify step sees exactly the bytes the provider signed.
type Delivery struct {
	EventID string            `json:"event_id"`
	Type    string            `json:"type"`
	Body    json.RawMessage   `json:"body"`
	Headers map[string]string `json:"headers"`
}

type userData struct {
	ID                    string `json:"id"`
	FirstName             string `json:"first_name"`
	LastName              string `json:"last_name"`
	ImageURL              string `json:"image_url"`
	PrimaryEmailAddressID string `json:"primary_email_address_id"`
	EmailAddresses        []struct {
		ID           string `json:"id"`
		EmailAddress string `json:"email_address"`
	} `json:"email_addresses"`
}

type organizationData struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

type membershipData struct {
	Organization struct {
		ID string `json:"id"`
	} `json:"organization"`
	PublicUserData struct {
		UserID string `json:"user_id"`
	} `json:"public_user_data"`
}

// parseUser extracts a User from a user.* event body. Missing ID or primary
// email is terminal: the provider will redeliver the same malformed payload
// forever, retrying cannot help.
func parseUser(body json.RawMessage) (store.User, error) {
	var envelope struct {
		Data userData `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return store.User{}, steps.Terminalf("identity: malformed user payload: %v", err)
	}

	data := envelope.Data
	if data.ID == "" {
		return store.User{}, steps.Terminalf("identity: user payload missing id")
	}

	email := ""
	for _, addr := range data.EmailAddresses {
		if addr.ID == data.PrimaryEmailAddressID {
			email = addr.EmailAddress
			break
		}
	}
	if email == "" && len(data.EmailAddresses) > 0 {
		email = data.EmailAddresses[0].EmailAddress
	}
	if email == "" {
		return store.User{}, steps.Terminalf("identity: user %s has no email address", data.ID)
	}

	return store.User{
		ID:       data.ID,
		Email:    email,
		Name:     strings.TrimSpace(data.FirstName + " " + data.LastName),
		ImageURL: data.ImageURL,
	}, nil
}

func parseOrganization(body json.RawMessage) (store.Organization, error) {
	var envelope struct {
		Data organizationData `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return store.Organization{}, steps.Terminalf("identity: malformed organization payload: %v", err)
	}

	data := envelope.Data
	if data.ID == "" {
		return store.Organization{}, steps.Terminalf("identity: organization payload missing id")
	}

	return store.Organization{
		ID:       data.ID,
		Name:     data.Name,
		ImageURL: data.ImageURL,
	}, nil
}

func parseMembership(body json.RawMessage) (userID, orgID string, err error) {
	var envelope struct {
		Data membershipData `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", "", steps.Terminalf("identity: malformed membership payload: %v", err)
	}

	userID = envelope.Data.PublicUserData.UserID
	orgID = envelope.Data.Organization.ID
	if userID == "" || orgID == "" {
		return "", "", steps.Terminalf("identity: membership payload missing user or organization id")
	}
	return userID, orgID, nil
}

// deletedID extracts the entity id from a *.deleted event body.
func deletedID(body json.RawMessage) (string, error) {
	var envelope struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", steps.Terminalf("identity: malformed delete payload: %v", err)
	}
	if envelope.Data.ID == "" {
		return "", steps.Terminalf("identity: delete payload missing id")
	}
	return envelope.Data.ID, nil
}
