// Package cache holds demand-driven resource caches whose values own
// something that must be released explicitly, such as a served blob.
//
// Two caches share one storage core:
//
//   - LRU bounds the number of resident entries and evicts the least
//     recently used one after each insertion that exceeds Capacity.
//   - Window keeps the entries around a moving cursor resident, preloading
//     neighbours and releasing entries that drift too far away.
//
// # Production
//
// Values are created by a Producer and destroyed by a Disposer. Concurrent
// requests for a key that is not resident share a single production
// (golang.org/x/sync/singleflight). Productions run detached from the
// requesting context: a caller that gives up stops waiting, the production
// keeps going and its result is stored for the next request.
//
// Each key moves through absent, pending and resident. A failed production
// goes back to absent and leaves nothing behind, so the next request tries
// again. ReleaseAll disposes every resident entry; productions that were
// already running when it was called dispose their result on arrival and
// report ErrDiscarded.
//
// # Disposal
//
// The Disposer is called exactly once per stored value, outside the cache
// lock, whether the value leaves through eviction, Release, ReleaseAll, Trim
// or a discarded production.
//
// All methods are safe for concurrent use.
package cache
