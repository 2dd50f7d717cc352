package queue

import "errors"

var (
	// ErrUnknownTask is returned when enqueueing or executing a task that
	// has not been registered.
	ErrUnknownTask = errors.New("queue: unknown task")

	// ErrInvalidPayload is returned when a task payload cannot be
	// unmarshaled into the handler's payload type.
	ErrInvalidPayload = errors.New("queue: invalid payload")

	// ErrAlreadyStarted is returned when starting a running manager.
	ErrAlreadyStarted = errors.New("queue: already started")

	// ErrNotStarted is returned when stopping a manager that is not running.
	ErrNotStarted = errors.New("queue: not started")

	// ErrPoolRequired is returned when creating a manager or enqueuer
	// without a database pool.
	ErrPoolRequired = errors.New("queue: pool is required")
)
