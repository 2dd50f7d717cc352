package digest

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/dmitrymomot/hirewire/internal/store"
	"github.com/dmitrymomot/hirewire/pkg/queue"
	"github.com/dmitrymomot/hirewire/pkg/steps"
)

// UserDigestPlanner fans recent job listings out to users who opted into
// the daily digest, filtered per user by their free-text prompt.
type UserDigestPlanner struct {
	executor *steps.Executor
	store    store.Store
	matcher  Matcher
	queue    Enqueuer
	cfg      plannerConfig
}

// NewUserDigestPlanner creates the per-user job-listing digest planner.
func NewUserDigestPlanner(executor *steps.Executor, st store.Store, matcher Matcher, q Enqueuer, opts ...PlannerOption) (*UserDigestPlanner, error) {
	if executor == nil {
		return nil, ErrExecutorRequired
	}
	if st == nil {
		return nil, ErrStoreRequired
	}
	if matcher == nil {
		return nil, ErrMatcherRequired
	}
	if q == nil {
		return nil, ErrQueueRequired
	}

	cfg := defaultPlannerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &UserDigestPlanner{executor: executor, store: st, matcher: matcher, queue: q, cfg: cfg}, nil
}

func (p *UserDigestPlanner) Name() string { return "digest.plan-user" }

func (p *UserDigestPlanner) Schedule() string { return plannerSchedule }

// Handle plans one daily run. Recipient and candidate loads are memoized
// steps, so a retry after a partial emission works from the same snapshot
// and the per-recipient unique keys swallow the events already emitted.
func (p *UserDigestPlanner) Handle(ctx context.Context) error {
	now := p.cfg.clock()
	runID := "digest:user:" + runDate(now)

	return p.executor.Execute(ctx, runID, func(ctx context.Context, run *steps.Run) error {
		recipients, err := steps.Do(ctx, run, "load-recipients", func(ctx context.Context) ([]store.JobListingRecipient, error) {
			return p.store.ListJobListingRecipients(ctx)
		})
		if err != nil {
			return err
		}
		if len(recipients) == 0 {
			return nil
		}

		listings, err := steps.Do(ctx, run, "load-listings", func(ctx context.Context) ([]store.ListingSummary, error) {
			return p.store.ListPublishedListingsSince(ctx, now.Add(-digestWindow))
		})
		if err != nil {
			return err
		}
		if len(listings) == 0 {
			return nil
		}

		return steps.Void(ctx, run, "emit-events", func(ctx context.Context) error {
			emitted := 0
			for _, recipient := range recipients {
				matched, err := p.filter(ctx, recipient, listings)
				if err != nil {
					return err
				}
				if len(matched) == 0 {
					continue
				}

				event := UserDigestEvent{
					PlannerRunID: runID,
					Recipient:    Recipient{ID: recipient.UserID, Email: recipient.Email, Name: recipient.Name},
					Listings:     matched,
				}
				if err := p.queue.Enqueue(ctx, UserDigestTask, event,
					queue.UniqueKey(event.Key()),
					queue.UniqueFor(24*time.Hour),
				); err != nil {
					return err
				}
				emitted++
			}

			p.cfg.logger.InfoContext(ctx, "planned user digest",
				slog.String("run_id", runID),
				slog.Int("recipients", len(recipients)),
				slog.Int("emitted", emitted),
			)
			return nil
		})
	})
}

// filter applies the recipient's free-text prompt. A blank prompt matches
// every listing; otherwise the matcher picks at most matcherLimit, and
// result order follows the candidate order.
func (p *UserDigestPlanner) filter(ctx context.Context, recipient store.JobListingRecipient, listings []store.ListingSummary) ([]store.ListingSummary, error) {
	prompt := strings.TrimSpace(recipient.AIPrompt)
	if prompt == "" {
		return listings, nil
	}

	ids, err := p.matcher.Match(ctx, prompt, listings, matcherLimit)
	if err != nil {
		return nil, err
	}

	keep := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}

	var matched []store.ListingSummary
	for _, listing := range listings {
		if _, ok := keep[listing.ID]; ok {
			matched = append(matched, listing)
		}
	}
	if len(matched) > matcherLimit {
		matched = matched[:matcherLimit]
	}
	return matched, nil
}
