package mediatypes

import (
	"path"
	"strings"
)

// SourceKind classifies how a preview for an image is produced.
type SourceKind string

const (
	// SourceKindAnimated marks formats that may carry several frames.
	SourceKindAnimated SourceKind = "animated"
	// SourceKindStaticPreview marks lossy formats that get a rasterized still preview.
	SourceKindStaticPreview SourceKind = "lossy-needing-static-preview"
	// SourceKindOther marks formats whose bytes are displayed as-is.
	SourceKindOther SourceKind = "other"
)

// NeedsStaticPreview reports whether previews of this kind are rasterized.
func (k SourceKind) NeedsStaticPreview() bool {
	return k == SourceKindAnimated || k == SourceKindStaticPreview
}

// ImageExtensions is the allow-list of image extensions accepted by a walk.
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
	".bmp":  true,
	".avif": true,
	".heic": true,
	".heif": true,
}

var sourceKinds = map[string]SourceKind{
	".gif":  SourceKindAnimated,
	".webp": SourceKindStaticPreview,
	".avif": SourceKindStaticPreview,
	".heic": SourceKindStaticPreview,
	".heif": SourceKindStaticPreview,
}

// MimeTypes maps image extensions to their MIME types.
var MimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".avif": "image/avif",
	".heic": "image/heic",
	".heif": "image/heif",
}

// Ext returns the lowercase extension of name including the leading dot.
// A bare extension such as "JPG" is accepted as well.
func Ext(name string) string {
	ext := path.Ext(name)
	if ext == "" && name != "" && !strings.ContainsAny(name, "./") {
		ext = "." + name
	}
	return strings.ToLower(ext)
}

// IsSupportedImage returns true if the file name has an allowed image extension.
func IsSupportedImage(name string) bool {
	return ImageExtensions[Ext(name)]
}

// GetSourceKind returns the SourceKind for a file name or extension.
func GetSourceKind(name string) SourceKind {
	if kind, ok := sourceKinds[Ext(name)]; ok {
		return kind
	}
	return SourceKindOther
}

// GetMimeType returns the MIME type for a file name or extension.
// Returns "application/octet-stream" if the extension is not recognized.
func GetMimeType(name string) string {
	if mime, ok := MimeTypes[Ext(name)]; ok {
		return mime
	}
	return "application/octet-stream"
}
