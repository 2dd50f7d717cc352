package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/robfig/cron/v3"

	"github.com/dmitrymomot/hirewire/pkg/steps"
	"github.com/dmitrymomot/hirewire/pkg/throttle"
)

const (
	defaultMaxWorkers = 100
	defaultQueue      = river.QueueDefault
)

// Manager combines enqueueing and worker processing. It embeds Enqueuer for
// the enqueue methods.
type Manager struct {
	*Enqueuer
	registry *taskRegistry
	workers  *river.Workers
	logger   *slog.Logger

	mu      sync.Mutex
	started bool
}

// NewManager creates a job manager. The River client exists immediately, so
// jobs can be enqueued before Start is called.
func NewManager(pool *pgxpool.Pool, opts ...Option) (*Manager, error) {
	if pool == nil {
		return nil, ErrPoolRequired
	}

	cfg := newConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.maxWorkers == 0 {
		cfg.maxWorkers = defaultMaxWorkers
	}

	queues := map[string]river.QueueConfig{
		defaultQueue: {MaxWorkers: cfg.maxWorkers},
	}
	for name, workers := range cfg.queues {
		queues[name] = river.QueueConfig{MaxWorkers: workers}
	}

	var periodicJobs []*river.PeriodicJob
	for _, sched := range cfg.schedules {
		cronSchedule, err := parseCronSchedule(sched.schedule)
		if err != nil {
			return nil, fmt.Errorf("queue: invalid cron schedule %q: %w", sched.schedule, err)
		}

		periodicJobs = append(periodicJobs, river.NewPeriodicJob(
			cronSchedule,
			func() (river.JobArgs, *river.InsertOpts) {
				return &taskArgs{TaskName: sched.name}, nil
			},
			&river.PeriodicJobOpts{RunOnStart: false},
		))

		cfg.registry.register(sched.name, &scheduledTaskExecutor{handler: sched.handler})
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, &taskWorker{
		registry: cfg.registry,
		logger:   cfg.logger,
	})

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues:       queues,
		Workers:      workers,
		PeriodicJobs: periodicJobs,
		Logger:       cfg.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("queue: create client: %w", err)
	}

	return &Manager{
		Enqueuer: &Enqueuer{
			pool:   pool,
			client: client,
			logger: cfg.logger,
		},
		registry: cfg.registry,
		workers:  workers,
		logger:   cfg.logger,
	}, nil
}

// Start begins processing jobs.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return ErrAlreadyStarted
	}

	if err := m.client.Start(ctx); err != nil {
		return fmt.Errorf("queue: start client: %w", err)
	}

	m.started = true
	m.logger.Info("queue manager started",
		slog.Int("tasks", len(m.registry.names())),
	)
	return nil
}

// Stop shuts down gracefully, waiting for running jobs to finish.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started {
		return ErrNotStarted
	}

	if err := m.client.Stop(ctx); err != nil {
		return fmt.Errorf("queue: stop client: %w", err)
	}

	m.started = false
	m.logger.Info("queue manager stopped")
	return nil
}

// Enqueue inserts a job after validating the task is registered.
func (m *Manager) Enqueue(ctx context.Context, name string, payload any, opts ...EnqueueOption) error {
	if _, ok := m.registry.get(name); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	return m.Enqueuer.Enqueue(ctx, name, payload, opts...)
}

// EnqueueTx inserts a job within a transaction after validating the task is
// registered.
func (m *Manager) EnqueueTx(ctx context.Context, tx pgx.Tx, name string, payload any, opts ...EnqueueOption) error {
	if _, ok := m.registry.get(name); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	return m.Enqueuer.EnqueueTx(ctx, tx, name, payload, opts...)
}

// taskArgs is the single River job arguments type for all tasks: a task
// name plus an opaque JSON payload dispatched through the registry.
type taskArgs struct {
	TaskName  string          `json:"task_name" river:"unique"`
	UniqueKey string          `json:"unique_key,omitempty" river:"unique"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

func (taskArgs) Kind() string {
	return "hirewire:task"
}

// taskWorker processes every task through the registry and maps
// classified failures onto River's scheduling verbs.
type taskWorker struct {
	river.WorkerDefaults[taskArgs]
	registry *taskRegistry
	logger   *slog.Logger
}

func (w *taskWorker) Work(ctx context.Context, job *river.Job[taskArgs]) error {
	executor, ok := w.registry.get(job.Args.TaskName)
	if !ok || executor == nil {
		return fmt.Errorf("%w: %s", ErrUnknownTask, job.Args.TaskName)
	}

	w.logger.DebugContext(ctx, "executing task",
		slog.String("task", job.Args.TaskName),
		slog.Int64("job_id", job.ID),
		slog.Int("attempt", job.Attempt),
	)

	if err := executor.Execute(ctx, job.Args.Payload); err != nil {
		// Terminal failures must never be retried.
		if steps.IsTerminal(err) {
			w.logger.ErrorContext(ctx, "task failed terminally",
				slog.String("task", job.Args.TaskName),
				slog.Int64("job_id", job.ID),
				slog.Any("error", err),
			)
			return river.JobCancel(err)
		}

		// Rate-limit backpressure delays the job, it is not a failure.
		if after, throttled := throttle.RetryAfter(err); throttled {
			w.logger.DebugContext(ctx, "task throttled",
				slog.String("task", job.Args.TaskName),
				slog.Int64("job_id", job.ID),
				slog.Duration("retry_after", after),
			)
			return river.JobSnooze(after)
		}

		w.logger.ErrorContext(ctx, "task failed",
			slog.String("task", job.Args.TaskName),
			slog.Int64("job_id", job.ID),
			slog.Int("attempt", job.Attempt),
			slog.Any("error", err),
		)
		return err
	}

	w.logger.DebugContext(ctx, "task completed",
		slog.String("task", job.Args.TaskName),
		slog.Int64("job_id", job.ID),
	)
	return nil
}

type cronScheduleAdapter struct {
	schedule cron.Schedule
}

func (a *cronScheduleAdapter) Next(current time.Time) time.Time {
	return a.schedule.Next(current)
}

func parseCronSchedule(expr string) (river.PeriodicSchedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(expr)
	if err != nil {
		return nil, err
	}
	return &cronScheduleAdapter{schedule: schedule}, nil
}
