// Package middleware provides the HTTP middleware of the image browser
// host.
//
// It includes:
//   - Access logging in W3C Extended Log Format
//   - Prometheus request metrics labelled by route template
//   - gzip compression of JSON responses
//
// Locator bytes under /blob/ are already compressed images; they are not
// gzipped and are treated as static files by the access log.
package middleware
