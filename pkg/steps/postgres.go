package steps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx used by PostgresStore.
// Both *pgxpool.Pool and pgx.Tx satisfy it.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists run state in job_runs and step results in
// job_steps (see internal/db/migrations). Step inserts are
// ON CONFLICT DO NOTHING: the first recorded success wins, duplicate
// execution is a no-op.
type PostgresStore struct {
	db Querier
}

// NewPostgresStore creates a store on top of a pgx pool or transaction.
func NewPostgresStore(db Querier) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (RunState, bool, error) {
	var state RunState
	err := s.db.QueryRow(ctx,
		`SELECT status, reason, updated_at FROM job_runs WHERE id = $1`,
		runID,
	).Scan(&state.Status, &state.Reason, &state.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return RunState{}, false, nil
	}
	if err != nil {
		return RunState{}, false, fmt.Errorf("steps: select run: %w", err)
	}
	return state, true, nil
}

func (s *PostgresStore) SetRun(ctx context.Context, runID string, state RunState) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO job_runs (id, status, reason, created_at, updated_at)
		 VALUES ($1, $2, $3, now(), now())
		 ON CONFLICT (id) DO UPDATE
		 SET status = EXCLUDED.status, reason = EXCLUDED.reason, updated_at = now()`,
		runID, state.Status, state.Reason,
	)
	if err != nil {
		return fmt.Errorf("steps: upsert run: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetStep(ctx context.Context, runID, name string) (json.RawMessage, bool, error) {
	var result json.RawMessage
	err := s.db.QueryRow(ctx,
		`SELECT result FROM job_steps WHERE run_id = $1 AND step_name = $2`,
		runID, name,
	).Scan(&result)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("steps: select step: %w", err)
	}
	return result, true, nil
}

func (s *PostgresStore) SetStep(ctx context.Context, runID, name string, result json.RawMessage) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO job_steps (run_id, step_name, result, completed_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (run_id, step_name) DO NOTHING`,
		runID, name, result,
	)
	if err != nil {
		return fmt.Errorf("steps: insert step: %w", err)
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)
