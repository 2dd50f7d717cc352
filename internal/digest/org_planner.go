package digest

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/hirewire/internal/store"
	"github.com/dmitrymomot/hirewire/pkg/queue"
	"github.com/dmitrymomot/hirewire/pkg/steps"
)

// OrgDigestPlanner fans recent applications out to organization members who
// opted into the application digest, filtered per member by their minimum
// rating threshold.
type OrgDigestPlanner struct {
	executor *steps.Executor
	store    store.Store
	queue    Enqueuer
	cfg      plannerConfig
}

// NewOrgDigestPlanner creates the per-organization application digest
// planner.
func NewOrgDigestPlanner(executor *steps.Executor, st store.Store, q Enqueuer, opts ...PlannerOption) (*OrgDigestPlanner, error) {
	if executor == nil {
		return nil, ErrExecutorRequired
	}
	if st == nil {
		return nil, ErrStoreRequired
	}
	if q == nil {
		return nil, ErrQueueRequired
	}

	cfg := defaultPlannerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &OrgDigestPlanner{executor: executor, store: st, queue: q, cfg: cfg}, nil
}

func (p *OrgDigestPlanner) Name() string { return "digest.plan-org" }

func (p *OrgDigestPlanner) Schedule() string { return plannerSchedule }

// Handle plans one daily run. Applications are grouped by organization
// first, then matched against each member recipient separately, because one
// organization can have several recipients with different thresholds.
func (p *OrgDigestPlanner) Handle(ctx context.Context) error {
	now := p.cfg.clock()
	runID := "digest:org:" + runDate(now)

	return p.executor.Execute(ctx, runID, func(ctx context.Context, run *steps.Run) error {
		recipients, err := steps.Do(ctx, run, "load-recipients", func(ctx context.Context) ([]store.ApplicationRecipient, error) {
			return p.store.ListApplicationRecipients(ctx)
		})
		if err != nil {
			return err
		}
		if len(recipients) == 0 {
			return nil
		}

		applications, err := steps.Do(ctx, run, "load-applications", func(ctx context.Context) ([]store.ApplicationSummary, error) {
			return p.store.ListApplicationsSince(ctx, now.Add(-digestWindow))
		})
		if err != nil {
			return err
		}
		if len(applications) == 0 {
			return nil
		}

		byOrg := make(map[string][]store.ApplicationSummary)
		for _, app := range applications {
			byOrg[app.OrganizationID] = append(byOrg[app.OrganizationID], app)
		}

		return steps.Void(ctx, run, "emit-events", func(ctx context.Context) error {
			emitted := 0
			for _, recipient := range recipients {
				matched := filterByRating(byOrg[recipient.OrganizationID], recipient.MinimumRating)
				if len(matched) == 0 {
					continue
				}

				event := OrgDigestEvent{
					PlannerRunID:   runID,
					OrganizationID: recipient.OrganizationID,
					Recipient:      Recipient{ID: recipient.UserID, Email: recipient.Email, Name: recipient.Name},
					Applications:   matched,
				}
				if err := p.queue.Enqueue(ctx, OrgDigestTask, event,
					queue.UniqueKey(event.Key()),
					queue.UniqueFor(24*time.Hour),
				); err != nil {
					return err
				}
				emitted++
			}

			p.cfg.logger.InfoContext(ctx, "planned org digest",
				slog.String("run_id", runID),
				slog.Int("recipients", len(recipients)),
				slog.Int("emitted", emitted),
			)
			return nil
		})
	})
}

// filterByRating keeps applications whose rating meets the inclusive
// threshold. An unrated application counts as 0; a nil threshold admits
// everything.
func filterByRating(applications []store.ApplicationSummary, minimumRating *int) []store.ApplicationSummary {
	if minimumRating == nil {
		return applications
	}

	var matched []store.ApplicationSummary
	for _, app := range applications {
		rating := 0
		if app.Rating != nil {
			rating = *app.Rating
		}
		if rating >= *minimumRating {
			matched = append(matched, app)
		}
	}
	return matched
}
