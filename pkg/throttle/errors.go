package throttle

import (
	"errors"
	"fmt"
	"time"
)

// ErrClientRequired is returned when creating a Redis limiter without a client.
var ErrClientRequired = errors.New("throttle: redis client is required")

// RetryAfterError reports that a window's capacity is exhausted. It is
// backpressure, not a fault: callers should re-attempt after After.
type RetryAfterError struct {
	Key   string
	After time.Duration
}

func (e *RetryAfterError) Error() string {
	return fmt.Sprintf("throttle: limit exceeded for %s, retry after %s", e.Key, e.After)
}

// RetryAfter extracts the backpressure delay from err, reporting false if
// err is not a RetryAfterError.
func RetryAfter(err error) (time.Duration, bool) {
	var ra *RetryAfterError
	if errors.As(err, &ra) {
		return ra.After, true
	}
	return 0, false
}
