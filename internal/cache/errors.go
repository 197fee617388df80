package cache

import "errors"

var (
	// ErrInvalidCapacity is returned by NewLRU for a capacity below one.
	ErrInvalidCapacity = errors.New("cache: capacity must be at least 1")

	// ErrInvalidDistance is returned by NewWindow when the release distance
	// does not exceed the preload distance, or either is negative.
	ErrInvalidDistance = errors.New("cache: release distance must be greater than preload distance")

	// ErrNoProducer is returned by constructors when Options.Produce is nil.
	ErrNoProducer = errors.New("cache: producer is required")

	// ErrDiscarded is returned to the awaiters of a production whose result
	// was thrown away because ReleaseAll ran while it was pending.
	ErrDiscarded = errors.New("cache: production discarded by release")
)
