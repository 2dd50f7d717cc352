package notify

import (
	"context"
	"io"
	"log/slog"

	"github.com/dmitrymomot/hirewire/internal/digest"
	"github.com/dmitrymomot/hirewire/pkg/mailer"
	"github.com/dmitrymomot/hirewire/pkg/steps"
	"github.com/dmitrymomot/hirewire/pkg/throttle"
)

// Rate-limiter keys, one window per digest category.
const (
	userDigestThrottleKey = "notify:user-digest"
	orgDigestThrottleKey  = "notify:org-digest"
)

// EmailSender is the slice of mailer.Mailer the consumers need.
type EmailSender interface {
	Send(ctx context.Context, params mailer.SendParams) error
}

// ConsumerOption configures a consumer.
type ConsumerOption func(*consumerConfig)

type consumerConfig struct {
	logger *slog.Logger
}

// WithLogger sets the consumer's logger.
func WithLogger(l *slog.Logger) ConsumerOption {
	return func(c *consumerConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

func newConsumerConfig(opts []ConsumerOption) consumerConfig {
	cfg := consumerConfig{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// UserDigestConsumer delivers per-user job-listing digests.
type UserDigestConsumer struct {
	executor *steps.Executor
	limiter  throttle.Limiter
	mailer   EmailSender
	cfg      consumerConfig
}

// NewUserDigestConsumer creates the user digest delivery task.
func NewUserDigestConsumer(executor *steps.Executor, limiter throttle.Limiter, m EmailSender, opts ...ConsumerOption) (*UserDigestConsumer, error) {
	if executor == nil {
		return nil, ErrExecutorRequired
	}
	if limiter == nil {
		return nil, ErrLimiterRequired
	}
	if m == nil {
		return nil, ErrMailerRequired
	}
	return &UserDigestConsumer{executor: executor, limiter: limiter, mailer: m, cfg: newConsumerConfig(opts)}, nil
}

func (c *UserDigestConsumer) Name() string { return digest.UserDigestTask }

// Handle sends one digest email. The limiter slot is taken inside the run,
// after the succeeded-run short-circuit, so redelivered events that already
// sent do not burn window capacity. Backpressure surfaces as a
// RetryAfterError for the queue to snooze on.
func (c *UserDigestConsumer) Handle(ctx context.Context, event digest.UserDigestEvent) error {
	if event.PlannerRunID == "" || event.Recipient.ID == "" {
		return steps.Terminalf("notify: user digest event missing planner run or recipient")
	}
	if len(event.Listings) == 0 || event.Recipient.Email == "" {
		return nil
	}

	return c.executor.Execute(ctx, "notify:user:"+event.Key(), func(ctx context.Context, run *steps.Run) error {
		if err := c.limiter.Take(ctx, userDigestThrottleKey); err != nil {
			return err
		}

		return steps.Void(ctx, run, "send-email", func(ctx context.Context) error {
			err := c.mailer.Send(ctx, mailer.SendParams{
				To:       []string{mailer.Recipient(event.Recipient.Name, event.Recipient.Email)},
				Template: "user_digest.md",
				Data:     buildUserDigestData(event),
			})
			if err != nil {
				return err
			}

			c.cfg.logger.InfoContext(ctx, "sent user digest",
				slog.String("event_key", event.Key()),
				slog.Int("listings", len(event.Listings)),
			)
			return nil
		})
	})
}

// OrgDigestConsumer delivers per-organization application digests.
type OrgDigestConsumer struct {
	executor *steps.Executor
	limiter  throttle.Limiter
	mailer   EmailSender
	cfg      consumerConfig
}

// NewOrgDigestConsumer creates the org digest delivery task.
func NewOrgDigestConsumer(executor *steps.Executor, limiter throttle.Limiter, m EmailSender, opts ...ConsumerOption) (*OrgDigestConsumer, error) {
	if executor == nil {
		return nil, ErrExecutorRequired
	}
	if limiter == nil {
		return nil, ErrLimiterRequired
	}
	if m == nil {
		return nil, ErrMailerRequired
	}
	return &OrgDigestConsumer{executor: executor, limiter: limiter, mailer: m, cfg: newConsumerConfig(opts)}, nil
}

func (c *OrgDigestConsumer) Name() string { return digest.OrgDigestTask }

func (c *OrgDigestConsumer) Handle(ctx context.Context, event digest.OrgDigestEvent) error {
	if event.PlannerRunID == "" || event.Recipient.ID == "" {
		return steps.Terminalf("notify: org digest event missing planner run or recipient")
	}
	if len(event.Applications) == 0 || event.Recipient.Email == "" {
		return nil
	}

	return c.executor.Execute(ctx, "notify:org:"+event.Key(), func(ctx context.Context, run *steps.Run) error {
		if err := c.limiter.Take(ctx, orgDigestThrottleKey); err != nil {
			return err
		}

		return steps.Void(ctx, run, "send-email", func(ctx context.Context) error {
			err := c.mailer.Send(ctx, mailer.SendParams{
				To:       []string{mailer.Recipient(event.Recipient.Name, event.Recipient.Email)},
				Template: "org_digest.md",
				Data:     buildOrgDigestData(event),
			})
			if err != nil {
				return err
			}

			c.cfg.logger.InfoContext(ctx, "sent org digest",
				slog.String("event_key", event.Key()),
				slog.Int("applications", len(event.Applications)),
			)
			return nil
		})
	})
}
