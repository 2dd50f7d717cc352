package digest

import (
	"io"
	"log/slog"
	"time"
)

const (
	// Both digests run once daily at 7am Central.
	plannerSchedule = "TZ=America/Chicago 0 7 * * *"

	// Candidate activity window trailing the planner tick.
	digestWindow = 72 * time.Hour

	// Upper bound on listings a semantic match may return per recipient.
	matcherLimit = 10
)

type plannerConfig struct {
	clock  func() time.Time
	logger *slog.Logger
}

func defaultPlannerConfig() plannerConfig {
	return plannerConfig{
		clock:  time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// PlannerOption configures a planner.
type PlannerOption func(*plannerConfig)

// WithClock overrides the planner's time source.
func WithClock(clock func() time.Time) PlannerOption {
	return func(c *plannerConfig) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithLogger sets the planner's logger.
func WithLogger(l *slog.Logger) PlannerOption {
	return func(c *plannerConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// runDate formats the tick date used in planner run IDs. Two ticks on the
// same day collapse onto one run, so a rescheduled cron fire cannot
// double-plan.
func runDate(now time.Time) string {
	return now.UTC().Format("2006-01-02")
}
