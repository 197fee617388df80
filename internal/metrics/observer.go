package metrics

import (
	"image-browser/internal/cache"
	"image-browser/internal/filesystem"
	"image-browser/internal/locator"
)

// filesystemObserver implements filesystem.Observer using the Prometheus
// metrics declared in this package.
type filesystemObserver struct{}

// NewFilesystemObserver creates an observer that records filesystem metrics
// into the Prometheus counters and histograms declared in metrics.go.
func NewFilesystemObserver() filesystem.Observer {
	return &filesystemObserver{}
}

func (o *filesystemObserver) ObserveRetryAttempt(op string) {
	FilesystemRetryAttempts.WithLabelValues(op).Inc()
}

func (o *filesystemObserver) ObserveRetrySuccess(op string) {
	FilesystemRetrySuccess.WithLabelValues(op).Inc()
}

func (o *filesystemObserver) ObserveRetryFailure(op string) {
	FilesystemRetryFailures.WithLabelValues(op).Inc()
}

func (o *filesystemObserver) ObserveStaleError(op string) {
	FilesystemStaleErrors.WithLabelValues(op).Inc()
}

func (o *filesystemObserver) ObserveDuration(op string, durationSeconds float64, err error) {
	FilesystemOperationDuration.WithLabelValues(op).Observe(durationSeconds)
	if err != nil {
		FilesystemOperationErrors.WithLabelValues(op).Inc()
	}
}

// cacheObserver implements cache.Observer.
type cacheObserver struct{}

// NewCacheObserver creates an observer for the resource caches.
func NewCacheObserver() cache.Observer {
	return &cacheObserver{}
}

func (o *cacheObserver) ObserveHit(name string) {
	CacheHitsTotal.WithLabelValues(name).Inc()
}

func (o *cacheObserver) ObserveMiss(name string) {
	CacheMissesTotal.WithLabelValues(name).Inc()
}

func (o *cacheObserver) ObserveEviction(name, reason string) {
	CacheEvictionsTotal.WithLabelValues(name, reason).Inc()
}

func (o *cacheObserver) ObserveProduction(name string, durationSeconds float64, err error) {
	CacheProductionDuration.WithLabelValues(name).Observe(durationSeconds)
	status := "success"
	if err != nil {
		status = "error"
	}
	CacheProductionsTotal.WithLabelValues(name, status).Inc()
}

func (o *cacheObserver) ObserveResident(name string, count int) {
	CacheResidentEntries.WithLabelValues(name).Set(float64(count))
}

// locatorObserver implements locator.Observer.
type locatorObserver struct{}

// NewLocatorObserver creates an observer for the locator store.
func NewLocatorObserver() locator.Observer {
	return &locatorObserver{}
}

func (o *locatorObserver) ObserveLocators(count int, bytes int64) {
	LocatorsLive.Set(float64(count))
	LocatorBytes.Set(float64(bytes))
}
