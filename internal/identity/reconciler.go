package identity

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dmitrymomot/hirewire/internal/store"
	"github.com/dmitrymomot/hirewire/pkg/steps"
	"github.com/dmitrymomot/hirewire/pkg/tagcache"
)

// TaskName is the queue task handling webhook deliveries.
const TaskName = "identity.reconcile"

// Reconciler applies webhook deliveries to the store as idempotent step
// runs. The run ID derives from the provider event ID, so a redelivered
// event resolves to the same run and skips completed steps.
type Reconciler struct {
	executor *steps.Executor
	verifier Verifier
	store    store.Store
	cache    *tagcache.Cache[any]
	logger   *slog.Logger
}

// ReconcilerOption configures the reconciler.
type ReconcilerOption func(*Reconciler)

// WithLogger sets the reconciler's logger.
func WithLogger(l *slog.Logger) ReconcilerOption {
	return func(r *Reconciler) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewReconciler creates the webhook reconciliation task.
func NewReconciler(executor *steps.Executor, verifier Verifier, st store.Store, cache *tagcache.Cache[any], opts ...ReconcilerOption) (*Reconciler, error) {
	if executor == nil {
		return nil, ErrExecutorRequired
	}
	if verifier == nil {
		return nil, ErrVerifierRequired
	}
	if st == nil {
		return nil, ErrStoreRequired
	}
	if cache == nil {
		return nil, ErrCacheRequired
	}

	r := &Reconciler{
		executor: executor,
		verifier: verifier,
		store:    st,
		cache:    cache,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Name implements the queue task contract.
func (r *Reconciler) Name() string { return TaskName }

// Handle reconciles one delivery: verify the signature, apply the mutation,
// invalidate the touched cache tags. Terminal failures abandon the run; any
// other failure leaves it resumable for the queue's retry.
func (r *Reconciler) Handle(ctx context.Context, d Delivery) error {
	if d.EventID == "" || d.Type == "" {
		return steps.Terminalf("identity: delivery missing event id or type")
	}

	return r.executor.Execute(ctx, "identity:"+d.EventID, func(ctx context.Context, run *steps.Run) error {
		if err := steps.Void(ctx, run, "verify-webhook", func(context.Context) error {
			if err := r.verifier.Verify(d.Body, d.Headers); err != nil {
				return steps.Terminal(fmt.Errorf("identity: verify %s: %w", d.EventID, err))
			}
			return nil
		}); err != nil {
			return err
		}

		m, err := r.plan(d)
		if err != nil {
			return err
		}

		if err := steps.Void(ctx, run, m.step, m.apply); err != nil {
			return err
		}

		if err := steps.Void(ctx, run, "invalidate-cache", func(ctx context.Context) error {
			for _, tag := range m.tags {
				if err := r.cache.Invalidate(ctx, tag); err != nil {
					return err
				}
			}
			return nil
		}); err != nil {
			return err
		}

		r.logger.InfoContext(ctx, "reconciled identity event",
			slog.String("event_id", d.EventID),
			slog.String("event_type", d.Type),
		)
		return nil
	})
}

// mutation is the per-event-type plan: one mutate step plus the tags the
// invalidate step must cascade through afterwards.
type mutation struct {
	step  string
	apply func(ctx context.Context) error
	tags  []tagcache.Tag
}

func (r *Reconciler) plan(d Delivery) (mutation, error) {
	switch d.Type {
	case EventUserCreated:
		user, err := parseUser(d.Body)
		if err != nil {
			return mutation{}, err
		}
		return mutation{
			step:  "sync-user",
			apply: func(ctx context.Context) error { return r.store.UpsertUserWithDefaults(ctx, user) },
			tags: []tagcache.Tag{
				tagcache.Global(store.ClassUsers),
				store.UserTag(user.ID),
				tagcache.Global(store.ClassUserSettings),
				store.UserSettingsTag(user.ID),
			},
		}, nil

	case EventUserUpdated:
		user, err := parseUser(d.Body)
		if err != nil {
			return mutation{}, err
		}
		return mutation{
			step:  "sync-user",
			apply: func(ctx context.Context) error { return r.store.UpsertUser(ctx, user) },
			tags: []tagcache.Tag{
				tagcache.Global(store.ClassUsers),
				store.UserTag(user.ID),
			},
		}, nil

	case EventUserDeleted:
		id, err := deletedID(d.Body)
		if err != nil {
			return mutation{}, err
		}
		return mutation{
			step:  "delete-user",
			apply: func(ctx context.Context) error { return r.store.DeleteUser(ctx, id) },
			tags: []tagcache.Tag{
				tagcache.Global(store.ClassUsers),
				store.UserTag(id),
				tagcache.Global(store.ClassUserSettings),
				store.UserSettingsTag(id),
				tagcache.Global(store.ClassOrgUserSettings),
			},
		}, nil

	case EventOrganizationCreated, EventOrganizationUpdated:
		org, err := parseOrganization(d.Body)
		if err != nil {
			return mutation{}, err
		}
		return mutation{
			step:  "sync-organization",
			apply: func(ctx context.Context) error { return r.store.UpsertOrganization(ctx, org) },
			tags: []tagcache.Tag{
				tagcache.Global(store.ClassOrganizations),
				store.OrganizationTag(org.ID),
			},
		}, nil

	case EventOrganizationDeleted:
		id, err := deletedID(d.Body)
		if err != nil {
			return mutation{}, err
		}
		return mutation{
			step:  "delete-organization",
			apply: func(ctx context.Context) error { return r.store.DeleteOrganization(ctx, id) },
			tags: []tagcache.Tag{
				tagcache.Global(store.ClassOrganizations),
				store.OrganizationTag(id),
				store.OrgUserSettingsTag(id),
				store.OrgListingsTag(id),
				store.OrgApplicationsTag(id),
				tagcache.Global(store.ClassJobListings),
			},
		}, nil

	case EventMembershipCreated:
		userID, orgID, err := parseMembership(d.Body)
		if err != nil {
			return mutation{}, err
		}
		return mutation{
			step: "sync-membership",
			apply: func(ctx context.Context) error {
				// Provision only; a redelivery must not reset settings the
				// member has since tuned.
				_, err := r.store.GetOrganizationUserSettings(ctx, userID, orgID)
				if err == nil {
					return nil
				}
				if !errors.Is(err, store.ErrNotFound) {
					return err
				}
				return r.store.UpsertOrganizationUserSettings(ctx, store.OrganizationUserSettings{
					UserID:         userID,
					OrganizationID: orgID,
				})
			},
			tags: []tagcache.Tag{
				tagcache.Global(store.ClassOrgUserSettings),
				store.OrgUserSettingsTag(orgID),
			},
		}, nil

	case EventMembershipDeleted:
		userID, orgID, err := parseMembership(d.Body)
		if err != nil {
			return mutation{}, err
		}
		return mutation{
			step: "delete-membership",
			apply: func(ctx context.Context) error {
				return r.store.DeleteOrganizationUserSettings(ctx, userID, orgID)
			},
			tags: []tagcache.Tag{
				tagcache.Global(store.ClassOrgUserSettings),
				store.OrgUserSettingsTag(orgID),
			},
		}, nil

	default:
		return mutation{}, steps.Terminal(fmt.Errorf("%w: %s", ErrUnknownEventType, d.Type))
	}
}
