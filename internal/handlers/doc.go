// Package handlers provides HTTP request handlers for the image browser API.
//
// It includes handlers for:
//   - Listing images and albums of the current collection
//   - Producing and releasing preview and lightbox locators
//   - Serving locator bytes under /blob/
//   - Reading history
//   - Health checks, version and cache statistics
package handlers
