// Package resources owns the displayable locators for a collection of
// images.
//
// A Manager keeps two independent caches over the same images:
//
//   - previews, an LRU of thumbnail-scale locators requested per visible
//     grid cell (EnsurePreviewURL, ReleasePreviewURL);
//   - lightbox, a window of full-scale locators around the viewer cursor
//     (SyncLightboxWindow, ReleaseAllLightboxURLs).
//
// The two never evict each other's entries, even for the same file: each
// production creates its own locator. ReleaseAll empties both, which is
// what happens before a new collection is loaded.
//
// The Producer reads bytes through the descriptor's file handle. Animated
// and heavy lossy formats get a rasterized still frame for previews; when
// that fails the original bytes are used instead, so a broken rasterizer
// never turns into a failed preview.
package resources
