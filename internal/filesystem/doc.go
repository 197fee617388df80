/*
Package filesystem provides resilient filesystem operations for the directory
walker and the resource producer.

# Retries

ReadDirWithRetry, StatWithRetry and OpenWithRetry wrap the os functions with
retry logic for NFS stale file handle errors (ESTALE). Only ESTALE triggers a
retry; every other error is returned immediately. Backoff is exponential and
capped:

	config := filesystem.DefaultRetryConfig() // 3 retries, 50ms -> 500ms
	entries, err := filesystem.ReadDirWithRetry(dir, config)

# Error classification

IsSkippable reports whether an error raised while listing a subdirectory
belongs to the permission / modification / not-found class. The walker skips
such subtrees and keeps going; anything else aborts the walk.

# Metrics

Retry outcomes are reported to an Observer installed with SetObserver. The
metrics package provides the Prometheus implementation; when no observer is
installed recording is skipped, which keeps tests free of global state.
*/
package filesystem
