package digest

import "errors"

var (
	ErrExecutorRequired = errors.New("digest: step executor is required")
	ErrStoreRequired    = errors.New("digest: store is required")
	ErrMatcherRequired  = errors.New("digest: matcher is required")
	ErrQueueRequired    = errors.New("digest: queue is required")
)
