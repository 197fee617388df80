package cache

// Eviction reasons reported to Observer.ObserveEviction.
const (
	ReasonCapacity   = "capacity"
	ReasonRelease    = "release"
	ReasonReleaseAll = "release_all"
	ReasonTrim       = "trim"
	ReasonWindow     = "window"
	ReasonDiscarded  = "discarded"
)

// Observer records cache activity. Implementations are provided by the
// metrics package. name identifies the cache instance ("preview",
// "lightbox").
type Observer interface {
	ObserveHit(name string)
	ObserveMiss(name string)
	ObserveEviction(name, reason string)
	ObserveProduction(name string, durationSeconds float64, err error)
	ObserveResident(name string, count int)
}

type noopObserver struct{}

func (noopObserver) ObserveHit(string) {}
func (noopObserver) ObserveMiss(string) {}
func (noopObserver) ObserveEviction(string, string) {}
func (noopObserver) ObserveProduction(string, float64, error) {}
func (noopObserver) ObserveResident(string, int) {}
