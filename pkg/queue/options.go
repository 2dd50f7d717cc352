package queue

import (
	"context"
	"log/slog"
)

// config holds manager configuration.
type config struct {
	registry   *taskRegistry
	queues     map[string]int
	logger     *slog.Logger
	schedules  []scheduleConfig
	maxWorkers int
}

func newConfig() *config {
	return &config{
		registry: newTaskRegistry(),
		queues:   make(map[string]int),
	}
}

type scheduleConfig struct {
	handler  scheduledHandler
	name     string
	schedule string
}

type scheduledHandler func(context.Context) error

// Option configures the manager.
type Option func(*config)

// WithTask registers a task handler. The payload type parameter must match
// the Handle signature.
//
// Example:
//
//	type Reconciler struct{ ... }
//
//	func (r *Reconciler) Name() string { return "identity.reconcile" }
//	func (r *Reconciler) Handle(ctx context.Context, d identity.Delivery) error { ... }
//
//	queue.WithTask[identity.Delivery](reconciler)
func WithTask[P any, T interface {
	Name() string
	Handle(context.Context, P) error
}](task T) Option {
	return func(c *config) {
		c.registry.register(task.Name(), newTaskWrapper[P, T](task))
	}
}

// WithScheduledTask registers a periodic task. Schedule() returns a cron
// expression (5 fields, optional TZ= prefix).
//
// Example:
//
//	func (p *Planner) Name() string     { return "digest.plan-user" }
//	func (p *Planner) Schedule() string { return "TZ=America/Chicago 0 7 * * *" }
//	func (p *Planner) Handle(ctx context.Context) error { ... }
func WithScheduledTask[T interface {
	Name() string
	Schedule() string
	Handle(context.Context) error
}](task T) Option {
	return func(c *config) {
		c.schedules = append(c.schedules, scheduleConfig{
			name:     task.Name(),
			schedule: task.Schedule(),
			handler:  task.Handle,
		})
	}
}

// WithQueue configures a named queue with its own worker count.
func WithQueue(name string, workers int) Option {
	return func(c *config) {
		if workers > 0 {
			c.queues[name] = workers
		}
	}
}

// WithLogger sets the logger for job processing. Defaults to a noop logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxWorkers caps concurrent job processing on the default queue.
// Defaults to 100.
func WithMaxWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxWorkers = n
		}
	}
}
