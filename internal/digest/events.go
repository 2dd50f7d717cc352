package digest

import (
	"context"

	"github.com/dmitrymomot/hirewire/internal/store"
	"github.com/dmitrymomot/hirewire/pkg/queue"
)

// Queue tasks consuming the fan-out events.
const (
	UserDigestTask = "notify.user-digest"
	OrgDigestTask  = "notify.org-digest"
)

// Recipient identifies who a fan-out event is addressed to.
type Recipient struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// UserDigestEvent carries one user's filtered job listings.
type UserDigestEvent struct {
	PlannerRunID string                 `json:"planner_run_id"`
	Recipient    Recipient              `json:"recipient"`
	Listings     []store.ListingSummary `json:"listings"`
}

// Key is the event's idempotency key, deterministic per planner run and
// recipient.
func (e UserDigestEvent) Key() string { return e.PlannerRunID + ":" + e.Recipient.ID }

// OrgDigestEvent carries the recent applications one organization member
// should hear about.
type OrgDigestEvent struct {
	PlannerRunID   string                     `json:"planner_run_id"`
	OrganizationID string                     `json:"organization_id"`
	Recipient      Recipient                  `json:"recipient"`
	Applications   []store.ApplicationSummary `json:"applications"`
}

func (e OrgDigestEvent) Key() string {
	return e.PlannerRunID + ":" + e.OrganizationID + ":" + e.Recipient.ID
}

// Enqueuer is the queue surface planners emit fan-out events through.
// Satisfied by both queue.Manager and queue.Enqueuer.
type Enqueuer interface {
	Enqueue(ctx context.Context, name string, payload any, opts ...queue.EnqueueOption) error
}

// Matcher is the semantic-matching collaborator: it returns the IDs of the
// candidates relevant to a free-text query, at most limit of them. Blank
// queries never reach the matcher; the planner short-circuits those to
// match-everything.
type Matcher interface {
	Match(ctx context.Context, query string, candidates []store.ListingSummary, limit int) ([]string, error)
}
