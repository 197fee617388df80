package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_browser_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "image_browser_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "image_browser_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Resource cache metrics. The cache label is "preview" or "lightbox".
var (
	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_browser_cache_hits_total",
			Help: "Total number of resource cache hits",
		},
		[]string{"cache"},
	)

	CacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_browser_cache_misses_total",
			Help: "Total number of resource cache misses",
		},
		[]string{"cache"},
	)

	CacheEvictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_browser_cache_evictions_total",
			Help: "Total number of disposed cache entries by reason",
		},
		[]string{"cache", "reason"},
	)

	CacheProductionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_browser_cache_productions_total",
			Help: "Total number of resource productions by outcome",
		},
		[]string{"cache", "status"},
	)

	CacheProductionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "image_browser_cache_production_duration_seconds",
			Help:    "Time to produce a resource locator",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"cache"},
	)

	CacheResidentEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "image_browser_cache_resident_entries",
			Help: "Number of resident entries per cache",
		},
		[]string{"cache"},
	)

	StaticPreviewsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_browser_static_previews_total",
			Help: "Static preview rasterizations by outcome (vips, imaging, fallback)",
		},
		[]string{"outcome"},
	)
)

// Locator store metrics
var (
	LocatorsLive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "image_browser_locators_live",
			Help: "Number of live resource locators",
		},
	)

	LocatorBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "image_browser_locator_bytes",
			Help: "Bytes held by live resource locators",
		},
	)
)

// Walker metrics
var (
	WalkRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_browser_walk_runs_total",
			Help: "Total number of directory walks by status",
		},
		[]string{"mode", "status"},
	)

	WalkDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "image_browser_walk_duration_seconds",
			Help:    "Directory walk duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	WalkDirectoriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_browser_walk_directories_total",
			Help: "Total number of directories listed by walks",
		},
	)

	WalkFilesSeenTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_browser_walk_files_seen_total",
			Help: "Total number of files encountered by walks",
		},
	)

	WalkSkippedSubtreesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_browser_walk_skipped_subtrees_total",
			Help: "Total number of subdirectories skipped after a listing error",
		},
	)

	WalkProbeFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_browser_walk_probe_failures_total",
			Help: "Total number of image header probes that failed",
		},
	)

	WalkLastImages = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "image_browser_walk_last_images",
			Help: "Number of images produced by the last successful walk",
		},
	)

	WalkLastTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "image_browser_walk_last_timestamp",
			Help: "Unix timestamp of the last successful walk",
		},
	)
)

// Collection metrics
var (
	CollectionImages = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "image_browser_collection_images",
			Help: "Number of images in the current collection",
		},
	)

	CollectionAlbums = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "image_browser_collection_albums",
			Help: "Number of albums in the current collection",
		},
	)

	WatcherEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_browser_watcher_events_total",
			Help: "Total number of filesystem watcher events",
		},
		[]string{"event_type"},
	)

	WatcherErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_browser_watcher_errors_total",
			Help: "Total number of filesystem watcher errors",
		},
	)

	WatchedDirectories = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "image_browser_watched_directories",
			Help: "Number of directories currently being watched",
		},
	)

	HistoryOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_browser_history_operations_total",
			Help: "Total number of reading history operations",
		},
		[]string{"operation", "status"},
	)
)

// Filesystem retry metrics
var (
	FilesystemOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "image_browser_filesystem_operation_duration_seconds",
			Help:    "Duration of filesystem operations including retries",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"operation"},
	)

	FilesystemOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_browser_filesystem_operation_errors_total",
			Help: "Total number of failed filesystem operations",
		},
		[]string{"operation"},
	)

	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_browser_filesystem_retry_attempts_total",
			Help: "Total number of filesystem retry attempts after stale handles",
		},
		[]string{"operation"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_browser_filesystem_retry_success_total",
			Help: "Total number of filesystem operations that succeeded after retrying",
		},
		[]string{"operation"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_browser_filesystem_retry_failures_total",
			Help: "Total number of filesystem operations that exhausted their retries",
		},
		[]string{"operation"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_browser_filesystem_stale_errors_total",
			Help: "Total number of NFS stale file handle errors",
		},
		[]string{"operation"},
	)
)

// Memory metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "image_browser_memory_usage_ratio",
			Help: "Heap allocation as a fraction of the memory limit",
		},
	)

	MemoryPressure = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "image_browser_memory_pressure",
			Help: "1 while memory usage is above the critical water mark",
		},
	)

	MemoryTrimsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_browser_memory_trims_total",
			Help: "Total number of cache trims triggered by memory pressure",
		},
	)

	GoMemLimit = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "image_browser_go_memlimit_bytes",
			Help: "Configured GOMEMLIMIT in bytes",
		},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "image_browser_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
