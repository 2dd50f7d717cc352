package tagcache

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// entry holds a cached value together with the tags it was produced under
// and the epoch it was created at.
type entry[V any] struct {
	expiresAt time.Time // zero value = never expires
	value     V
	key       string
	tags      []Tag
	epoch     uint64
}

func (e *entry[V]) isExpired() bool {
	if e.expiresAt.IsZero() {
		return false
	}
	return time.Now().After(e.expiresAt)
}

// Cache is an in-memory tag-invalidating cache with TTL expiration and
// optional LRU eviction. Lookups are O(1) via a hash map; eviction order is
// maintained in a doubly-linked list with most recently used entries at the
// front.
type Cache[V any] struct {
	items    map[string]*list.Element
	eviction *list.List

	// tagEpochs records the epoch at which each concrete tag was last
	// invalidated; classEpochs does the same per entity class for global
	// invalidations, so a global invalidation covers every narrower tag of
	// the class without enumerating them.
	tagEpochs   map[string]uint64
	classEpochs map[string]uint64
	epoch       atomic.Uint64

	sf     singleflight.Group
	opts   *options
	done   chan struct{}
	mu     sync.Mutex
	closed bool
}

// New creates a tag-invalidating cache.
func New[V any](opts ...Option) *Cache[V] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	c := &Cache[V]{
		items:       make(map[string]*list.Element),
		eviction:    list.New(),
		tagEpochs:   make(map[string]uint64),
		classEpochs: make(map[string]uint64),
		opts:        o,
		done:        make(chan struct{}),
	}

	if o.cleanupInterval > 0 {
		go c.janitor()
	}

	return c
}

// Get retrieves a value by key. Returns ErrNotFound if the key does not
// exist, has expired, or any of its tags was invalidated at or after the
// entry's creation epoch. Accessing a key marks it as recently used.
func (c *Cache[V]) Get(_ context.Context, key string) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V

	elem, ok := c.items[key]
	if !ok {
		return zero, ErrNotFound
	}

	e := elem.Value.(*entry[V])
	if e.isExpired() || c.stale(e) {
		c.removeElement(elem)
		return zero, ErrNotFound
	}

	c.eviction.MoveToFront(elem)
	return e.value, nil
}

// Set stores a value under the given tags. TTL semantics: positive expires
// after the duration, zero uses the configured default, negative never
// expires. The entry is stamped with a fresh epoch, so it survives any
// invalidation that happened before the Set and none that happen after.
func (c *Cache[V]) Set(_ context.Context, key string, value V, ttl time.Duration, tags ...Tag) error {
	return c.set(key, value, ttl, c.epoch.Add(1), tags)
}

// set stores a value stamped with the given epoch. Caller must not hold the
// mutex.
func (c *Cache[V]) set(key string, value V, ttl time.Duration, epoch uint64, tags []Tag) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	if ttl == 0 {
		ttl = c.opts.defaultTTL
	}
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	if elem, ok := c.items[key]; ok {
		e := elem.Value.(*entry[V])
		e.value = value
		e.expiresAt = expiresAt
		e.tags = tags
		e.epoch = epoch
		c.eviction.MoveToFront(elem)
		return nil
	}

	if c.opts.maxEntries > 0 && len(c.items) >= c.opts.maxEntries {
		if oldest := c.eviction.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}

	e := &entry[V]{key: key, value: value, expiresAt: expiresAt, tags: tags, epoch: epoch}
	c.items[key] = c.eviction.PushFront(e)

	return nil
}

// Invalidate marks a tag as invalidated at a fresh epoch. Every entry
// carrying the tag (or, for a global tag, any tag of the same entity class)
// created at or before this point becomes a miss on next read. Invalidating
// is idempotent.
func (c *Cache[V]) Invalidate(_ context.Context, tag Tag) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	epoch := c.epoch.Add(1)
	if tag.Kind() == KindGlobal {
		c.classEpochs[tag.Class()] = epoch
	} else {
		c.tagEpochs[tag.String()] = epoch
	}

	return nil
}

// GetOrSet retrieves a value, or computes it with fn on a miss. Concurrent
// misses for the same key are deduplicated with singleflight so fn runs
// once. fn returns the value and the tags to cache it under; the value is
// cached best effort with the default TTL.
//
// The entry is stamped with an epoch taken before fn runs: the value's
// creation is the load, not the store, so an invalidation landing while fn
// is in flight still covers the value fn produces.
func (c *Cache[V]) GetOrSet(ctx context.Context, key string, fn func(ctx context.Context) (V, []Tag, error)) (V, error) {
	if v, err := c.Get(ctx, key); err == nil {
		return v, nil
	}

	type result struct {
		val   V
		tags  []Tag
		epoch uint64
	}

	v, err, _ := c.sf.Do(key, func() (any, error) {
		epoch := c.epoch.Add(1)
		val, tags, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		return result{val: val, tags: tags, epoch: epoch}, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}

	r := v.(result)
	_ = c.set(key, r.val, 0, r.epoch, r.tags)

	return r.val, nil
}

// Has reports whether a key exists, has not expired, and is not stale.
func (c *Cache[V]) Has(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return false, nil
	}

	e := elem.Value.(*entry[V])
	if e.isExpired() || c.stale(e) {
		c.removeElement(elem)
		return false, nil
	}

	return true, nil
}

// Clear removes all entries. Tag epochs are kept: entries set after a Clear
// still respect earlier invalidations.
func (c *Cache[V]) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	c.items = make(map[string]*list.Element)
	c.eviction.Init()

	return nil
}

// Close stops the janitor goroutine and marks the cache as closed.
// Close is idempotent.
func (c *Cache[V]) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	close(c.done)

	return nil
}

// stale reports whether any tag of the entry was invalidated at or after
// the entry's creation epoch. Caller must hold the mutex.
func (c *Cache[V]) stale(e *entry[V]) bool {
	for _, t := range e.tags {
		if ce, ok := c.classEpochs[t.Class()]; ok && ce >= e.epoch {
			return true
		}
		if te, ok := c.tagEpochs[t.String()]; ok && te >= e.epoch {
			return true
		}
	}
	return false
}

func (c *Cache[V]) janitor() {
	ticker := time.NewTicker(c.opts.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.deleteExpired()
		}
	}
}

// deleteExpired removes expired and stale entries from back to front.
func (c *Cache[V]) deleteExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for elem := c.eviction.Back(); elem != nil; {
		e := elem.Value.(*entry[V])
		prev := elem.Prev()
		if e.isExpired() || c.stale(e) {
			c.removeElement(elem)
		}
		elem = prev
	}
}

// removeElement removes an element from both indexes. Caller must hold the mutex.
func (c *Cache[V]) removeElement(elem *list.Element) {
	c.eviction.Remove(elem)
	delete(c.items, elem.Value.(*entry[V]).key)
}
