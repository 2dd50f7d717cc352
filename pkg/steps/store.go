package steps

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Status of a job run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// RunState is the persisted state of one job run.
type RunState struct {
	Status    Status
	Reason    string // failure reason for terminal runs
	UpdatedAt time.Time
}

// Store persists run state and per-step results. Implementations must make
// SetStep an upsert keyed by (runID, name) so duplicate execution is a no-op.
type Store interface {
	// GetRun returns the state of a run, reporting false if it was never started.
	GetRun(ctx context.Context, runID string) (RunState, bool, error)

	// SetRun records the state of a run (upsert).
	SetRun(ctx context.Context, runID string, state RunState) error

	// GetStep returns the memoized result of a step, reporting false if the
	// step has no recorded success.
	GetStep(ctx context.Context, runID, name string) (json.RawMessage, bool, error)

	// SetStep records a step's successful result (upsert).
	SetStep(ctx context.Context, runID, name string, result json.RawMessage) error
}

// MemoryStore is an in-memory Store for tests and single-process setups.
type MemoryStore struct {
	runs  map[string]RunState
	steps map[string]map[string]json.RawMessage
	mu    sync.Mutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs:  make(map[string]RunState),
		steps: make(map[string]map[string]json.RawMessage),
	}
}

func (s *MemoryStore) GetRun(_ context.Context, runID string) (RunState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.runs[runID]
	return state, ok, nil
}

func (s *MemoryStore) SetRun(_ context.Context, runID string, state RunState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state.UpdatedAt = time.Now()
	s.runs[runID] = state
	return nil
}

func (s *MemoryStore) GetStep(_ context.Context, runID, name string) (json.RawMessage, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, ok := s.steps[runID][name]
	return result, ok, nil
}

func (s *MemoryStore) SetStep(_ context.Context, runID, name string, result json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.steps[runID] == nil {
		s.steps[runID] = make(map[string]json.RawMessage)
	}
	s.steps[runID][name] = result
	return nil
}

var _ Store = (*MemoryStore)(nil)
