package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
)

// Enqueuer inserts jobs without processing them. Use it in processes that
// only dispatch work for separate workers.
type Enqueuer struct {
	pool   *pgxpool.Pool
	client *river.Client[pgx.Tx]
	logger *slog.Logger
}

// NewEnqueuer creates an insert-only client (no workers, no queues).
func NewEnqueuer(pool *pgxpool.Pool, logger *slog.Logger) (*Enqueuer, error) {
	if pool == nil {
		return nil, ErrPoolRequired
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("queue: create enqueuer client: %w", err)
	}

	return &Enqueuer{pool: pool, client: client, logger: logger}, nil
}

// Enqueue inserts a job for processing by workers.
func (e *Enqueuer) Enqueue(ctx context.Context, name string, payload any, opts ...EnqueueOption) error {
	args, insertOpts, err := buildJobArgs(name, payload, opts...)
	if err != nil {
		return err
	}

	if _, err := e.client.Insert(ctx, args, insertOpts); err != nil {
		return fmt.Errorf("queue: enqueue: %w", err)
	}
	return nil
}

// EnqueueTx inserts a job within a transaction; the job becomes visible only
// after the transaction commits, keeping store writes and enqueues atomic.
func (e *Enqueuer) EnqueueTx(ctx context.Context, tx pgx.Tx, name string, payload any, opts ...EnqueueOption) error {
	args, insertOpts, err := buildJobArgs(name, payload, opts...)
	if err != nil {
		return err
	}

	if _, err := e.client.InsertTx(ctx, tx, args, insertOpts); err != nil {
		return fmt.Errorf("queue: enqueue tx: %w", err)
	}
	return nil
}

// buildJobArgs converts a task name, payload, and options into River args.
func buildJobArgs(name string, payload any, opts ...EnqueueOption) (*taskArgs, *river.InsertOpts, error) {
	var payloadBytes json.RawMessage
	if payload != nil {
		var err error
		payloadBytes, err = json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("queue: marshal payload: %w", err)
		}
	}

	args := &taskArgs{
		TaskName: name,
		Payload:  payloadBytes,
	}

	cfg := &enqueueConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	insertOpts := &river.InsertOpts{}
	if cfg.queue != "" {
		insertOpts.Queue = cfg.queue
	}
	if cfg.scheduledAt != nil {
		insertOpts.ScheduledAt = *cfg.scheduledAt
	}
	if cfg.maxAttempts > 0 {
		insertOpts.MaxAttempts = cfg.maxAttempts
	}
	if cfg.uniqueFor > 0 {
		// Every task shares one River kind, so uniqueness keys on the
		// river:"unique" tagged args fields (task name + unique key), not
		// the kind alone.
		insertOpts.UniqueOpts = river.UniqueOpts{
			ByArgs:   true,
			ByPeriod: cfg.uniqueFor,
		}
		if cfg.uniqueKey != "" {
			args.UniqueKey = cfg.uniqueKey
		}
	}

	return args, insertOpts, nil
}
