package queue

import (
	"context"
	"encoding/json"
	"errors"
	"maps"
	"slices"
	"sync"
)

// taskExecutor is the type-erased execution interface, allowing handlers
// with different payload types to live in one registry.
type taskExecutor interface {
	Execute(ctx context.Context, payload json.RawMessage) error
}

type taskRegistry struct {
	executors map[string]taskExecutor
	mu        sync.RWMutex
}

func newTaskRegistry() *taskRegistry {
	return &taskRegistry{executors: make(map[string]taskExecutor)}
}

func (r *taskRegistry) register(name string, executor taskExecutor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executors[name] = executor
}

func (r *taskRegistry) get(name string) (taskExecutor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	executor, ok := r.executors[name]
	return executor, ok
}

func (r *taskRegistry) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Collect(maps.Keys(r.executors))
}

// taskWrapper adapts a typed handler to the type-erased registry: it
// deserializes the JSON payload and calls the handler.
type taskWrapper[P any, T interface {
	Name() string
	Handle(context.Context, P) error
}] struct {
	task T
}

func (w *taskWrapper[P, T]) Execute(ctx context.Context, raw json.RawMessage) error {
	var payload P
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			return errors.Join(ErrInvalidPayload, err)
		}
	}
	return w.task.Handle(ctx, payload)
}

func newTaskWrapper[P any, T interface {
	Name() string
	Handle(context.Context, P) error
}](task T) *taskWrapper[P, T] {
	return &taskWrapper[P, T]{task: task}
}

type scheduledTaskExecutor struct {
	handler scheduledHandler
}

func (e *scheduledTaskExecutor) Execute(ctx context.Context, _ json.RawMessage) error {
	return e.handler(ctx)
}
