package notify

import "errors"

var (
	ErrExecutorRequired = errors.New("notify: step executor is required")
	ErrLimiterRequired  = errors.New("notify: rate limiter is required")
	ErrMailerRequired   = errors.New("notify: mailer is required")
)
