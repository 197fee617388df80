// Package gallery holds the current image collection.
//
// A Gallery scans its source with a walker, and on success replaces the
// collection in one step: every locator of the previous collection is
// released, the resource manager learns the new images, and readers see
// the new list, albums and history key together. A failed scan leaves the
// previous collection untouched and is reported through Status as a single
// readable message. A scan that succeeds with no images does replace the
// collection and reports ErrNoImages.
//
// Loads are serialized. TriggerReload coalesces bursts: while a reload
// runs, any number of further triggers queue exactly one more scan.
package gallery
