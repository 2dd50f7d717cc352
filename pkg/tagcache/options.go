package tagcache

import "time"

type options struct {
	defaultTTL      time.Duration
	cleanupInterval time.Duration
	maxEntries      int
}

func defaultOptions() *options {
	return &options{
		defaultTTL:      5 * time.Minute,
		cleanupInterval: time.Minute,
	}
}

// Option configures a Cache.
type Option func(*options)

// WithDefaultTTL sets the TTL applied when Set is called with a zero TTL.
// Defaults to 5 minutes.
func WithDefaultTTL(d time.Duration) Option {
	return func(o *options) {
		if d != 0 {
			o.defaultTTL = d
		}
	}
}

// WithCleanupInterval sets how often expired entries are removed in the
// background. Zero disables the janitor goroutine; expired entries are then
// only evicted lazily on access. Defaults to 1 minute.
func WithCleanupInterval(d time.Duration) Option {
	return func(o *options) {
		o.cleanupInterval = d
	}
}

// WithMaxEntries caps the number of entries; the least recently used entry
// is evicted when the cap is reached. Zero (the default) means unbounded.
func WithMaxEntries(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxEntries = n
		}
	}
}
