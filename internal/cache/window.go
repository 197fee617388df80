package cache

import (
	"context"
	"sync"
	"sync/atomic"

	"image-browser/internal/logging"
)

// Default distances for a Window.
const (
	DefaultPreloadDistance = 1
	DefaultReleaseDistance = 2
)

// WindowOptions configures a Window.
type WindowOptions[K comparable, V any] struct {
	Name string

	// PreloadDistance is how many neighbours on each side of the cursor
	// are produced by Sync.
	PreloadDistance int

	// ReleaseDistance is how far from the cursor a resident entry may be
	// before Sync releases it. Must be greater than PreloadDistance.
	ReleaseDistance int

	Produce   Producer[K, V]
	Dispose   Disposer[K, V]
	FlightKey func(K) string
	Observer  Observer
}

// Window keeps the entries around a cursor over an ordered key list
// resident. Entries between the preload and release distances are kept if
// already resident but never produced.
type Window[K comparable, V any] struct {
	store           *store[K, V]
	preloadDistance int
	releaseDistance int

	// seq identifies the latest Sync. Only the latest one releases.
	seq       atomic.Uint64
	releaseMu sync.Mutex
}

// NewWindow validates opts and returns an empty window.
func NewWindow[K comparable, V any](opts WindowOptions[K, V]) (*Window[K, V], error) {
	if opts.PreloadDistance < 0 || opts.ReleaseDistance <= opts.PreloadDistance {
		return nil, ErrInvalidDistance
	}
	if opts.Produce == nil {
		return nil, ErrNoProducer
	}
	return &Window[K, V]{
		store:           newStore(opts.Name, 0, opts.Produce, opts.Dispose, opts.FlightKey, opts.Observer),
		preloadDistance: opts.PreloadDistance,
		releaseDistance: opts.ReleaseDistance,
	}, nil
}

// Sync moves the cursor to keys[current]. It produces every key within the
// preload distance and waits for those productions to settle; individual
// failures are logged and skipped. It then releases resident keys farther
// than the release distance, and resident keys no longer in keys. The
// returned map holds everything resident afterwards.
//
// With an empty key list nothing is produced or released. A current index
// outside the list is clamped. If a newer Sync starts before this one
// finishes preloading, this one skips its release phase.
func (w *Window[K, V]) Sync(ctx context.Context, keys []K, current int) (map[K]V, error) {
	seq := w.seq.Add(1)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return w.store.snapshot(), nil
	}

	current = clamp(current, 0, len(keys)-1)
	lo := clamp(current-w.preloadDistance, 0, len(keys)-1)
	hi := clamp(current+w.preloadDistance, 0, len(keys)-1)

	var wg sync.WaitGroup
	for i := lo; i <= hi; i++ {
		wg.Add(1)
		go func(key K) {
			defer wg.Done()
			if _, err := w.store.ensure(ctx, key); err != nil && ctx.Err() == nil {
				logging.Warn("%s: preload of %v failed: %v", w.store.name, key, err)
			}
		}(keys[i])
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-done:
	}

	w.releaseMu.Lock()
	if w.seq.Load() == seq {
		w.releaseOutside(keys, current)
	} else {
		logging.Debug("%s: sync superseded, skipping release", w.store.name)
	}
	w.releaseMu.Unlock()

	return w.store.snapshot(), nil
}

// releaseOutside releases resident keys whose nearest index in keys is
// farther than the release distance from current, or that are absent.
func (w *Window[K, V]) releaseOutside(keys []K, current int) {
	distance := make(map[K]int, len(keys))
	for i, k := range keys {
		d := abs(i - current)
		if prev, ok := distance[k]; !ok || d < prev {
			distance[k] = d
		}
	}

	for k := range w.store.snapshot() {
		if d, ok := distance[k]; ok && d <= w.releaseDistance {
			continue
		}
		w.store.release(k, ReasonWindow)
	}
}

// Ensure produces a single key outside of Sync.
func (w *Window[K, V]) Ensure(ctx context.Context, key K) (V, error) {
	return w.store.ensure(ctx, key)
}

// Get returns a resident value without producing one.
func (w *Window[K, V]) Get(key K) (V, bool) {
	return w.store.get(key)
}

// Release disposes the entry for key if resident.
func (w *Window[K, V]) Release(key K) bool {
	return w.store.release(key, ReasonRelease)
}

// ReleaseAll disposes every resident entry.
func (w *Window[K, V]) ReleaseAll() int {
	return w.store.releaseAll()
}

// Snapshot returns a copy of all resident entries.
func (w *Window[K, V]) Snapshot() map[K]V {
	return w.store.snapshot()
}

// Len returns the number of resident entries.
func (w *Window[K, V]) Len() int {
	return w.store.size()
}

// Pending reports whether a production for key is in flight.
func (w *Window[K, V]) Pending(key K) bool {
	return w.store.isPending(key)
}

// PendingCount returns the number of productions in flight.
func (w *Window[K, V]) PendingCount() int {
	return w.store.pendingCount()
}

// Distances returns the preload and release distances.
func (w *Window[K, V]) Distances() (preload, release int) {
	return w.preloadDistance, w.releaseDistance
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
