package metrics

import "image-browser/internal/cache"

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	// --- Filesystem retry metrics (per operation) ---
	for _, op := range []string{"stat", "open", "readdir"} {
		FilesystemOperationDuration.WithLabelValues(op)
		FilesystemOperationErrors.WithLabelValues(op)
		FilesystemRetryAttempts.WithLabelValues(op)
		FilesystemRetrySuccess.WithLabelValues(op)
		FilesystemRetryFailures.WithLabelValues(op)
		FilesystemStaleErrors.WithLabelValues(op)
	}

	// --- Resource caches ---
	reasons := []string{
		cache.ReasonCapacity, cache.ReasonRelease, cache.ReasonReleaseAll,
		cache.ReasonTrim, cache.ReasonWindow, cache.ReasonDiscarded,
	}
	for _, name := range []string{"preview", "lightbox"} {
		CacheHitsTotal.WithLabelValues(name)
		CacheMissesTotal.WithLabelValues(name)
		CacheProductionDuration.WithLabelValues(name)
		CacheProductionsTotal.WithLabelValues(name, "success")
		CacheProductionsTotal.WithLabelValues(name, "error")
		CacheResidentEntries.WithLabelValues(name)
		for _, reason := range reasons {
			CacheEvictionsTotal.WithLabelValues(name, reason)
		}
	}

	for _, outcome := range []string{"vips", "imaging", "fallback"} {
		StaticPreviewsTotal.WithLabelValues(outcome)
	}

	// --- Walks ---
	for _, mode := range []string{"directory", "file_list"} {
		WalkRunsTotal.WithLabelValues(mode, "success")
		WalkRunsTotal.WithLabelValues(mode, "error")
	}

	for _, event := range []string{"create", "remove", "rename", "write"} {
		WatcherEventsTotal.WithLabelValues(event)
	}

	for _, op := range []string{"get", "record"} {
		HistoryOperationsTotal.WithLabelValues(op, "success")
		HistoryOperationsTotal.WithLabelValues(op, "error")
	}
}
