package cache

import "context"

// DefaultCapacity is the preview cache size used when none is configured.
const DefaultCapacity = 200

// Options configures an LRU.
type Options[K comparable, V any] struct {
	// Name labels the cache in logs and metrics.
	Name string

	// Capacity is the maximum number of resident entries. Must be >= 1.
	Capacity int

	Produce Producer[K, V]
	Dispose Disposer[K, V]

	// FlightKey maps a key to the string used to coalesce concurrent
	// productions. Distinct keys must map to distinct strings. Defaults
	// to fmt.Sprint.
	FlightKey func(K) string

	Observer Observer
}

// LRU is a bounded cache that evicts the least recently used entry when an
// insertion pushes it over capacity.
type LRU[K comparable, V any] struct {
	store *store[K, V]
}

// NewLRU validates opts and returns an empty cache.
func NewLRU[K comparable, V any](opts Options[K, V]) (*LRU[K, V], error) {
	if opts.Capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	if opts.Produce == nil {
		return nil, ErrNoProducer
	}
	return &LRU[K, V]{
		store: newStore(opts.Name, opts.Capacity, opts.Produce, opts.Dispose, opts.FlightKey, opts.Observer),
	}, nil
}

// Ensure returns the value for key, producing it if necessary. Concurrent
// calls for the same key share one production. Canceling ctx stops the
// wait, not the production.
func (c *LRU[K, V]) Ensure(ctx context.Context, key K) (V, error) {
	return c.store.ensure(ctx, key)
}

// Get returns a resident value without producing one. A hit counts as a use.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	return c.store.get(key)
}

// Release disposes the entry for key. It is a no-op when key is not
// resident, including while its production is still pending.
func (c *LRU[K, V]) Release(key K) bool {
	return c.store.release(key, ReasonRelease)
}

// ReleaseAll disposes every resident entry and returns how many there were.
// Productions already running are discarded when they finish.
func (c *LRU[K, V]) ReleaseAll() int {
	return c.store.releaseAll()
}

// Trim evicts least recently used entries until at most n remain.
func (c *LRU[K, V]) Trim(n int) int {
	return c.store.trim(n)
}

// Len returns the number of resident entries.
func (c *LRU[K, V]) Len() int {
	return c.store.size()
}

// Capacity returns the configured capacity.
func (c *LRU[K, V]) Capacity() int {
	return c.store.capacity
}

// Pending reports whether a production for key is in flight.
func (c *LRU[K, V]) Pending(key K) bool {
	return c.store.isPending(key)
}

// PendingCount returns the number of productions in flight.
func (c *LRU[K, V]) PendingCount() int {
	return c.store.pendingCount()
}

// Snapshot returns a copy of all resident entries.
func (c *LRU[K, V]) Snapshot() map[K]V {
	return c.store.snapshot()
}
