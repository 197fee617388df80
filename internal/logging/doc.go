// Package logging provides a simple leveled logging interface for the
// image browser.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information (cache hits, walk steps)
//   - INFO: General operational messages
//   - WARN: Warning conditions (skipped subtrees, rasterizer fallbacks)
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// The log level is configured via the LOG_LEVEL environment variable, or
// forced to debug with DEBUG=true. Command line tools may override it with
// SetLevel.
package logging
