// Package mediatypes provides shared type definitions for image files across
// the image browser.
//
// This package is a dependency-free foundation that can be imported by other
// packages without creating import cycles. It contains the extension
// allow-list used by the directory walker, the SourceKind classification that
// decides whether a preview needs a rasterized still frame, and MIME types
// used when serving locators.
//
// # Extension Detection
//
// Extensions are matched case-insensitively and may be passed with or
// without the leading dot:
//
//	mediatypes.IsSupportedImage("holiday.JPG")  // true
//	mediatypes.GetSourceKind(".gif")            // SourceKindAnimated
//	mediatypes.GetMimeType("webp")              // "image/webp"
//
// # Source Kinds
//
//	SourceKindAnimated          // gif: first frame is rasterized for previews
//	SourceKindStaticPreview     // webp, avif, heic, heif: expensive or poorly
//	                            // supported to decode repeatedly, rasterized once
//	SourceKindOther             // passed through unchanged
package mediatypes
