// Package synccache is a short-lived cache for state shared between students
// and teachers, such as chat messages and course progress.
//
// Entries are partitioned by role and owner: an entry stored for one role is
// never served to another, so switching roles always misses. Any mutation must
// call Invalidate before it touches the backing store.
package synccache

import (
	"context"
	"sync"
	"time"

	"github.com/s/coursehub/internal/domain"
)

// DefaultTTL is how long a stored entry stays fresh.
const DefaultTTL = 30 * time.Second

// Key identifies one partition.
type Key struct {
	Role  domain.Role
	Owner string
}

// For builds the partition key of actor.
func For(actor domain.Actor) Key {
	return Key{Role: actor.Role, Owner: actor.ID}
}

type entry[T any] struct {
	items    []T
	storedAt time.Time
	expired  bool
}

// Cache holds one list of T per partition.
type Cache[T any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[Key]*entry[T]
	// gen counts invalidations. A fetch started under an older generation
	// must not be stored.
	gen uint64
}

// New returns an empty cache. A non-positive ttl selects DefaultTTL.
func New[T any](ttl time.Duration) *Cache[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache[T]{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[Key]*entry[T]),
	}
}

// WithClock replaces the time source.
func (c *Cache[T]) WithClock(now func() time.Time) *Cache[T] {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
	return c
}

// Get returns the fresh entries of key.
func (c *Cache[T]) Get(key Key) ([]T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || !c.fresh(e) {
		return nil, false
	}
	return copyItems(e.items), true
}

// Put stores items for key. The ttl counts from now.
func (c *Cache[T]) Put(key Key, items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &entry[T]{items: copyItems(items), storedAt: c.now()}
}

// Invalidate expires every partition. Expired entries are kept as the
// fallback for a failed refetch.
func (c *Cache[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	for _, e := range c.entries {
		e.expired = true
	}
}

// Load serves key from the cache or refetches it. When the refetch fails and
// the partition has ever been filled, the last known entries are returned
// instead of the error.
func (c *Cache[T]) Load(ctx context.Context, key Key, fetch func(ctx context.Context) ([]T, error)) ([]T, error) {
	if items, ok := c.Get(key); ok {
		return items, nil
	}

	gen := c.generation()
	items, err := fetch(ctx)
	if err != nil {
		if stale, ok := c.last(key); ok {
			return stale, nil
		}
		return nil, err
	}

	c.putIfCurrent(key, items, gen)
	return items, nil
}

func (c *Cache[T]) generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// putIfCurrent stores items only when no Invalidate ran since gen was read.
func (c *Cache[T]) putIfCurrent(key Key, items []T, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gen != gen {
		return false
	}
	c.entries[key] = &entry[T]{items: copyItems(items), storedAt: c.now()}
	return true
}

func (c *Cache[T]) last(key Key) ([]T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return copyItems(e.items), true
}

func (c *Cache[T]) fresh(e *entry[T]) bool {
	return !e.expired && c.now().Sub(e.storedAt) < c.ttl
}

func copyItems[T any](items []T) []T {
	if items == nil {
		return nil
	}
	return append([]T(nil), items...)
}
