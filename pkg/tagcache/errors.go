package tagcache

import "errors"

var (
	// ErrNotFound is returned when a key does not exist, has expired,
	// or was superseded by a tag invalidation.
	ErrNotFound = errors.New("tagcache: not found")

	// ErrClosed is returned when operating on a closed cache.
	ErrClosed = errors.New("tagcache: closed")
)
