package notify_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hirewire/internal/digest"
	"github.com/dmitrymomot/hirewire/internal/notify"
	"github.com/dmitrymomot/hirewire/internal/store"
	"github.com/dmitrymomot/hirewire/pkg/mailer"
	"github.com/dmitrymomot/hirewire/pkg/steps"
	"github.com/dmitrymomot/hirewire/pkg/throttle"
)

type fakeMailer struct {
	mu       sync.Mutex
	sent     []mailer.SendParams
	failNext bool
}

func (m *fakeMailer) Send(_ context.Context, params mailer.SendParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext {
		m.failNext = false
		return errors.New("provider timeout")
	}
	m.sent = append(m.sent, params)
	return nil
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func intPtr(v int) *int { return &v }

func newExecutor(t *testing.T) *steps.Executor {
	t.Helper()
	executor, err := steps.NewExecutor(steps.NewMemoryStore())
	require.NoError(t, err)
	return executor
}

func openLimiter() throttle.Limiter {
	return throttle.NewMemory(throttle.Limit{Events: 1000, Window: time.Minute})
}

func userEvent(recipientID string, listings int) digest.UserDigestEvent {
	event := digest.UserDigestEvent{
		PlannerRunID: "digest:user:2026-08-30",
		Recipient: digest.Recipient{
			ID:    recipientID,
			Email: recipientID + "@example.com",
			Name:  "User " + recipientID,
		},
	}
	for i := range listings {
		event.Listings = append(event.Listings, store.ListingSummary{
			ID:               fmt.Sprintf("l%d", i+1),
			OrganizationName: "Acme",
			Title:            fmt.Sprintf("Listing %d", i+1),
			Wage:             intPtr(90000),
			WageInterval:     store.WageIntervalYearly,
		})
	}
	return event
}

func TestUserDigestConsumer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("redelivered event sends once", func(t *testing.T) {
		t.Parallel()
		m := &fakeMailer{}
		consumer, err := notify.NewUserDigestConsumer(newExecutor(t), openLimiter(), m)
		require.NoError(t, err)

		event := userEvent("u1", 2)
		require.NoError(t, consumer.Handle(ctx, event))
		require.NoError(t, consumer.Handle(ctx, event))
		require.Equal(t, 1, m.count())
		require.Equal(t, []string{"User u1 <u1@example.com>"}, m.sent[0].To)
	})

	t.Run("transient send failure retries and converges to one send", func(t *testing.T) {
		t.Parallel()
		m := &fakeMailer{failNext: true}
		consumer, err := notify.NewUserDigestConsumer(newExecutor(t), openLimiter(), m)
		require.NoError(t, err)

		event := userEvent("u2", 1)
		err = consumer.Handle(ctx, event)
		require.Error(t, err)
		require.False(t, steps.IsTerminal(err))

		require.NoError(t, consumer.Handle(ctx, event))
		require.NoError(t, consumer.Handle(ctx, event))
		require.Equal(t, 1, m.count())
	})

	t.Run("empty payload is dropped silently", func(t *testing.T) {
		t.Parallel()
		m := &fakeMailer{}
		consumer, err := notify.NewUserDigestConsumer(newExecutor(t), openLimiter(), m)
		require.NoError(t, err)

		require.NoError(t, consumer.Handle(ctx, userEvent("u3", 0)))
		require.Zero(t, m.count())
	})

	t.Run("event without identity is terminal", func(t *testing.T) {
		t.Parallel()
		m := &fakeMailer{}
		consumer, err := notify.NewUserDigestConsumer(newExecutor(t), openLimiter(), m)
		require.NoError(t, err)

		err = consumer.Handle(ctx, digest.UserDigestEvent{})
		require.True(t, steps.IsTerminal(err))
	})
}

func TestUserDigestConsumerRateLimit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var mu sync.Mutex
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	advance := func(d time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(d)
	}

	limiter := throttle.NewMemory(throttle.Limit{Events: 10, Window: time.Minute}, throttle.WithClock(clock))
	m := &fakeMailer{}
	consumer, err := notify.NewUserDigestConsumer(newExecutor(t), limiter, m)
	require.NoError(t, err)

	events := make([]digest.UserDigestEvent, 15)
	for i := range events {
		events[i] = userEvent(fmt.Sprintf("u%02d", i), 1)
	}

	var delayed []digest.UserDigestEvent
	for _, event := range events {
		err := consumer.Handle(ctx, event)
		if err != nil {
			after, ok := throttle.RetryAfter(err)
			require.True(t, ok, "over-capacity events must surface backpressure, got %v", err)
			require.Equal(t, time.Minute, after)
			delayed = append(delayed, event)
		}
	}
	require.Equal(t, 10, m.count(), "first window admits exactly the cap")
	require.Len(t, delayed, 5)

	advance(time.Minute)
	for _, event := range delayed {
		require.NoError(t, consumer.Handle(ctx, event))
	}
	require.Equal(t, 15, m.count(), "delayed events are delivered, never dropped")
}

func TestOrgDigestConsumer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	orgEvent := func(recipientID string, apps int) digest.OrgDigestEvent {
		event := digest.OrgDigestEvent{
			PlannerRunID:   "digest:org:2026-08-30",
			OrganizationID: "org1",
			Recipient: digest.Recipient{
				ID:    recipientID,
				Email: recipientID + "@example.com",
				Name:  "Member " + recipientID,
			},
		}
		for i := range apps {
			event.Applications = append(event.Applications, store.ApplicationSummary{
				JobListingID:  fmt.Sprintf("l%d", i+1),
				UserID:        fmt.Sprintf("app%d", i+1),
				ApplicantName: fmt.Sprintf("Applicant %d", i+1),
				ListingTitle:  "Backend Engineer",
				Rating:        intPtr(4),
			})
		}
		return event
	}

	t.Run("redelivered event sends once", func(t *testing.T) {
		t.Parallel()
		m := &fakeMailer{}
		consumer, err := notify.NewOrgDigestConsumer(newExecutor(t), openLimiter(), m)
		require.NoError(t, err)

		event := orgEvent("member1", 2)
		require.NoError(t, consumer.Handle(ctx, event))
		require.NoError(t, consumer.Handle(ctx, event))
		require.Equal(t, 1, m.count())
	})

	t.Run("renders through the real templates", func(t *testing.T) {
		t.Parallel()

		sender := &captureSender{}
		realMailer := mailer.New(sender, mailer.NewRenderer(notify.Templates()), mailer.Config{
			FallbackSubject: "Notification",
			DefaultLayout:   "base.html",
		})
		consumer, err := notify.NewOrgDigestConsumer(newExecutor(t), openLimiter(), realMailer)
		require.NoError(t, err)

		require.NoError(t, consumer.Handle(ctx, orgEvent("member2", 1)))
		require.Len(t, sender.emails, 1)
		require.Equal(t, "New Applications to Your Job Listings", sender.emails[0].Subject)
		require.Contains(t, sender.emails[0].HTML, "Applicant 1")
		require.Contains(t, sender.emails[0].HTML, "Backend Engineer")
		require.Contains(t, sender.emails[0].HTML, "4/5")
	})
}

type captureSender struct {
	mu     sync.Mutex
	emails []*mailer.Email
}

func (s *captureSender) Send(_ context.Context, email *mailer.Email) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emails = append(s.emails, email)
	return nil
}

func TestUserDigestRendersThroughTemplates(t *testing.T) {
	t.Parallel()

	sender := &captureSender{}
	realMailer := mailer.New(sender, mailer.NewRenderer(notify.Templates()), mailer.Config{
		FallbackSubject: "Notification",
		DefaultLayout:   "base.html",
	})
	consumer, err := notify.NewUserDigestConsumer(newExecutor(t), openLimiter(), realMailer)
	require.NoError(t, err)

	event := userEvent("u1", 2)
	event.Listings[0].Description = "<script>alert(1)</script>Build services in Go."
	require.NoError(t, consumer.Handle(context.Background(), event))

	require.Len(t, sender.emails, 1)
	require.Equal(t, "Your Daily Job Listings", sender.emails[0].Subject)
	require.Contains(t, sender.emails[0].HTML, "Listing 1")
	require.Contains(t, sender.emails[0].HTML, "Acme")
	require.Contains(t, sender.emails[0].HTML, "Build services in Go.")
	require.NotContains(t, sender.emails[0].HTML, "<script>")
}
