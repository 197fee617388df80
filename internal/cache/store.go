package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Producer creates the value for key.
type Producer[K comparable, V any] func(ctx context.Context, key K) (V, error)

// Disposer releases whatever a value owns.
type Disposer[K comparable, V any] func(key K, value V)

// entry is one resident value. lastUsed comes from the store's logical
// clock, so no two entries share a timestamp.
type entry[V any] struct {
	value    V
	lastUsed uint64
}

// evicted is a value removed under the lock and disposed after it.
type evicted[K comparable, V any] struct {
	key    K
	value  V
	reason string
}

// store is the state shared by LRU and Window: resident entries, pending
// productions and recency bookkeeping.
type store[K comparable, V any] struct {
	name      string
	produce   Producer[K, V]
	dispose   Disposer[K, V]
	flightKey func(K) string
	observer  Observer

	// capacity bounds resident entries; 0 means unbounded.
	capacity int

	group singleflight.Group

	mu         sync.Mutex
	entries    map[K]*entry[V]
	pending    map[K]struct{}
	clock      uint64
	generation uint64
}

func newStore[K comparable, V any](name string, capacity int, produce Producer[K, V], dispose Disposer[K, V], flightKey func(K) string, observer Observer) *store[K, V] {
	if flightKey == nil {
		flightKey = func(k K) string { return fmt.Sprint(k) }
	}
	if dispose == nil {
		dispose = func(K, V) {}
	}
	if observer == nil {
		observer = noopObserver{}
	}
	return &store[K, V]{
		name:      name,
		produce:   produce,
		dispose:   dispose,
		flightKey: flightKey,
		observer:  observer,
		capacity:  capacity,
		entries:   make(map[K]*entry[V]),
		pending:   make(map[K]struct{}),
	}
}

func (s *store[K, V]) touchLocked(e *entry[V]) {
	s.clock++
	e.lastUsed = s.clock
}

// ensure returns the resident value for key, joining or starting its
// production when there is none.
func (s *store[K, V]) ensure(ctx context.Context, key K) (V, error) {
	var zero V
	missed := false

	for {
		s.mu.Lock()
		if e, ok := s.entries[key]; ok {
			s.touchLocked(e)
			v := e.value
			s.mu.Unlock()
			if !missed {
				s.observer.ObserveHit(s.name)
			}
			return v, nil
		}
		arrival := s.generation
		s.mu.Unlock()

		if !missed {
			s.observer.ObserveMiss(s.name)
			missed = true
		}

		if err := ctx.Err(); err != nil {
			return zero, err
		}

		detached := context.WithoutCancel(ctx)
		ch := s.group.DoChan(s.flightKey(key), func() (any, error) {
			return s.produceAndStore(detached, key)
		})

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case res := <-ch:
			if errors.Is(res.Err, ErrDiscarded) && s.currentGeneration() == arrival {
				// Joined a production that was already stale when this
				// request arrived: start a fresh one.
				continue
			}
			if res.Err != nil {
				return zero, res.Err
			}
			v, _ := res.Val.(V)
			return v, nil
		}
	}
}

func (s *store[K, V]) currentGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// produceAndStore runs inside the singleflight call for key.
func (s *store[K, V]) produceAndStore(ctx context.Context, key K) (any, error) {
	s.mu.Lock()
	// A production that settled just before this flight started has
	// already stored the value.
	if e, ok := s.entries[key]; ok {
		s.touchLocked(e)
		v := e.value
		s.mu.Unlock()
		return v, nil
	}
	s.pending[key] = struct{}{}
	generation := s.generation
	s.mu.Unlock()

	start := time.Now()
	value, err := s.produce(ctx, key)
	s.observer.ObserveProduction(s.name, time.Since(start).Seconds(), err)

	s.mu.Lock()
	delete(s.pending, key)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if generation != s.generation {
		s.mu.Unlock()
		s.dispose(key, value)
		s.observer.ObserveEviction(s.name, ReasonDiscarded)
		return nil, ErrDiscarded
	}

	e := &entry[V]{value: value}
	s.touchLocked(e)
	s.entries[key] = e
	victims := s.evictOverCapacityLocked()
	count := len(s.entries)
	s.mu.Unlock()

	s.disposeAll(victims)
	s.observer.ObserveResident(s.name, count)
	return value, nil
}

// evictOverCapacityLocked removes least recently used entries until the
// store fits its capacity.
func (s *store[K, V]) evictOverCapacityLocked() []evicted[K, V] {
	if s.capacity <= 0 {
		return nil
	}
	var victims []evicted[K, V]
	for len(s.entries) > s.capacity {
		victims = append(victims, s.removeOldestLocked(ReasonCapacity))
	}
	return victims
}

// removeOldestLocked removes the entry with the smallest lastUsed. The
// caller guarantees the store is not empty.
func (s *store[K, V]) removeOldestLocked(reason string) evicted[K, V] {
	var (
		oldestKey K
		oldest    *entry[V]
	)
	for k, e := range s.entries {
		if oldest == nil || e.lastUsed < oldest.lastUsed {
			oldestKey, oldest = k, e
		}
	}
	delete(s.entries, oldestKey)
	return evicted[K, V]{key: oldestKey, value: oldest.value, reason: reason}
}

func (s *store[K, V]) disposeAll(victims []evicted[K, V]) {
	for _, v := range victims {
		s.dispose(v.key, v.value)
		s.observer.ObserveEviction(s.name, v.reason)
	}
}

// get returns a resident value and refreshes its recency without starting
// a production.
func (s *store[K, V]) get(key K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	s.touchLocked(e)
	return e.value, true
}

// release disposes the entry for key if one is resident. A pending
// production for key is left alone.
func (s *store[K, V]) release(key K, reason string) bool {
	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		s.mu.Unlock()
		return false
	}
	delete(s.entries, key)
	count := len(s.entries)
	s.mu.Unlock()

	s.disposeAll([]evicted[K, V]{{key: key, value: e.value, reason: reason}})
	s.observer.ObserveResident(s.name, count)
	return true
}

// releaseAll disposes every resident entry and marks running productions
// as stale.
func (s *store[K, V]) releaseAll() int {
	s.mu.Lock()
	s.generation++
	victims := make([]evicted[K, V], 0, len(s.entries))
	for k, e := range s.entries {
		victims = append(victims, evicted[K, V]{key: k, value: e.value, reason: ReasonReleaseAll})
	}
	s.entries = make(map[K]*entry[V])
	s.mu.Unlock()

	s.disposeAll(victims)
	s.observer.ObserveResident(s.name, 0)
	return len(victims)
}

// trim evicts least recently used entries until at most n remain.
func (s *store[K, V]) trim(n int) int {
	if n < 0 {
		n = 0
	}

	s.mu.Lock()
	var victims []evicted[K, V]
	for len(s.entries) > n {
		victims = append(victims, s.removeOldestLocked(ReasonTrim))
	}
	count := len(s.entries)
	s.mu.Unlock()

	s.disposeAll(victims)
	if len(victims) > 0 {
		s.observer.ObserveResident(s.name, count)
	}
	return len(victims)
}

func (s *store[K, V]) snapshot() map[K]V {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[K]V, len(s.entries))
	for k, e := range s.entries {
		out[k] = e.value
	}
	return out
}

func (s *store[K, V]) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *store[K, V]) isPending(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[key]
	return ok
}

func (s *store[K, V]) pendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
