// Package metrics provides Prometheus instrumentation for the image browser.
//
// All metrics are registered with promauto on the default registry and are
// prefixed with "image_browser_".
//
// # Metric Categories
//
// ## HTTP Metrics
//
//   - HTTPRequestsTotal: requests by method, path and status
//   - HTTPRequestDuration: request duration by method and path
//   - HTTPRequestsInFlight: requests currently being served
//
// ## Resource Cache Metrics
//
// Labelled by cache ("preview", "lightbox"):
//   - CacheHitsTotal, CacheMissesTotal
//   - CacheEvictionsTotal by reason (capacity, release, release_all, trim,
//     window, discarded)
//   - CacheProductionsTotal and CacheProductionDuration
//   - CacheResidentEntries
//   - StaticPreviewsTotal by rasterizer outcome
//   - LocatorsLive and LocatorBytes for the locator store
//
// ## Walk and Collection Metrics
//
//   - WalkRunsTotal, WalkDuration, WalkDirectoriesTotal, WalkFilesSeenTotal
//   - WalkSkippedSubtreesTotal: subdirectories skipped after listing errors
//   - WalkProbeFailuresTotal, WalkLastImages, WalkLastTimestamp
//   - CollectionImages, CollectionAlbums
//   - WatcherEventsTotal, WatcherErrors, WatchedDirectories
//   - HistoryOperationsTotal
//
// ## Filesystem and Memory Metrics
//
//   - Filesystem*: NFS stale handle retries per operation
//   - MemoryUsageRatio, MemoryPressure, MemoryTrimsTotal, GoMemLimit
//
// # Observers
//
// Packages that metrics itself depends on cannot import it. They expose an
// Observer interface instead, and this package provides the Prometheus
// implementations:
//
//	filesystem.SetObserver(metrics.NewFilesystemObserver())
//	store.SetObserver(metrics.NewLocatorObserver())
//	cache.Options{Observer: metrics.NewCacheObserver()}
//
// # Collector
//
// Collector polls a StatsProvider on an interval and refreshes the gauges
// that describe the current collection.
package metrics
