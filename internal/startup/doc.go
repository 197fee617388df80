// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig]:
//
//   - MEDIA_DIR: Root of the browsed image tree (default: /media)
//   - FILE_LIST: Optional manifest of image paths, one per line. When set the
//     collection is built from the listed files instead of MEDIA_DIR and
//     directory watching is disabled.
//   - DATABASE_DIR: Directory for the reading history database (default: /database).
//     History is disabled when the directory is not writable.
//   - BIND_ADDRESS: Interface the servers listen on (default: 127.0.0.1)
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - PREVIEW_CACHE_LIMIT: Preview cache capacity (default: 200)
//   - LIGHTBOX_PRELOAD_DISTANCE: Lightbox preload distance (default: 1)
//   - LIGHTBOX_RELEASE_DISTANCE: Lightbox release distance, greater than the
//     preload distance (default: 2)
//   - PROBE_DIMENSIONS: Read image headers for width and height during scans (default: false)
//   - WATCH_ENABLED: Rescan on filesystem changes (default: true)
//   - WATCH_DEBOUNCE: Quiet period before a rescan, as a Go duration (default: 2s)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_STATIC_FILES: Log blob requests (default: false)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//   - MEMORY_LIMIT, MEMORY_RATIO, GOMEMLIMIT: see package memory
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo].
package startup
