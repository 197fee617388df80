// Package main provides the entry point for the Image Browser application.
//
// Image Browser serves a local image collection (a directory tree, or a flat
// list of files) to a browser UI. The server owns the lifecycle of every
// in-memory image resource the UI shows: thumbnail previews live in a
// bounded LRU cache, full-size viewer images live in a window around the
// viewer cursor, and every resource is exposed through a revocable /blob/
// locator.
//
// # Application Lifecycle
//
//  1. Memory Configuration: Sets GOMEMLIMIT from MEMORY_LIMIT or GOMEMLIMIT
//  2. Configuration Loading: Reads environment variables and validates directories
//  3. Metrics and Rasterizers: Registers Prometheus collectors and starts libvips
//  4. Reading History: Opens the SQLite history database (optional)
//  5. Component Initialization:
//     - Locator store and resource manager (preview and lightbox caches)
//     - Gallery: scans the collection in the background
//     - Directory watcher: rescans after filesystem changes settle
//     - Memory monitor: trims previews under heap pressure
//     - Metrics collector
//  6. HTTP Server Setup: Routes, metrics, access logging and compression
//  7. Graceful Shutdown: Handles SIGINT/SIGTERM and releases every locator
//
// # HTTP Server
//
// The application runs two HTTP servers, both bound to BIND_ADDRESS
// (default 127.0.0.1):
//
//  1. Main Server (default port 8080): the /api endpoints, /blob/ locators
//     and the health probes.
//  2. Metrics Server (default port 9090, optional): /metrics.
//
// See package startup for the environment variables.
//
// # Related Packages
//
//   - [image-browser/internal/resources]: Resource manager facade
//   - [image-browser/internal/cache]: LRU and windowed resource caches
//   - [image-browser/internal/walker]: Directory walking
//   - [image-browser/internal/gallery]: Collection loading and albums
//   - [image-browser/internal/history]: Reading history
//   - [image-browser/internal/handlers]: HTTP request handlers
//   - [image-browser/internal/startup]: Configuration and initialization
package main
