package steps

import (
	"errors"
	"fmt"
)

var (
	// ErrRunTerminated is returned when executing a run that previously
	// failed terminally. Terminal runs are never resurrected.
	ErrRunTerminated = errors.New("steps: run terminated")

	// ErrStoreRequired is returned when creating an executor without a store.
	ErrStoreRequired = errors.New("steps: store is required")

	// ErrResultMismatch is returned when a memoized step result cannot be
	// decoded into the requested type.
	ErrResultMismatch = errors.New("steps: memoized result mismatch")
)

// TerminalError marks a failure that must never be retried: malformed
// payloads, missing required fields, failed signature checks. The executor
// records the run as permanently failed.
type TerminalError struct {
	Err error
}

func (e *TerminalError) Error() string {
	return "steps: terminal: " + e.Err.Error()
}

func (e *TerminalError) Unwrap() error {
	return e.Err
}

// Terminal wraps err as a terminal failure. Returns nil if err is nil.
func Terminal(err error) error {
	if err == nil {
		return nil
	}
	return &TerminalError{Err: err}
}

// Terminalf formats a terminal failure.
func Terminalf(format string, args ...any) error {
	return &TerminalError{Err: fmt.Errorf(format, args...)}
}

// IsTerminal reports whether err is (or wraps) a terminal failure.
func IsTerminal(err error) bool {
	var te *TerminalError
	return errors.As(err, &te) || errors.Is(err, ErrRunTerminated)
}
