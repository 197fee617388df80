package media

import (
	"encoding/json"
	"strconv"
	"time"

	"image-browser/internal/mediatypes"
	"image-browser/internal/source"
)

// ID identifies an image within one scan. It is stable only for the
// lifetime of that scan.
type ID string

// MakeID builds an ID from an image's relative path and its position in
// the sorted scan output.
func MakeID(relativePath string, ordinal int) ID {
	return ID(relativePath + ":" + strconv.Itoa(ordinal))
}

// Dimensions is an image size in pixels.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// UnknownDimensions is reported when an image's size has not been probed.
// It only conveys a plausible aspect ratio for layout.
var UnknownDimensions = Dimensions{Width: 4, Height: 3}

// Known reports whether both sides are positive.
func (d Dimensions) Known() bool {
	return d.Width > 0 && d.Height > 0
}

// ImageDescriptor is one accepted image file.
type ImageDescriptor struct {
	ID           ID                    `json:"id"`
	Name         string                `json:"name"`
	RelativePath string                `json:"relativePath"`
	ModTime      time.Time             `json:"modTime"`
	Size         int64                 `json:"size"`
	SourceKind   mediatypes.SourceKind `json:"sourceKind"`
	MimeType     string                `json:"mimeType"`
	Width        int                   `json:"width"`
	Height       int                   `json:"height"`
	Ordinal      int                   `json:"-"`
	File         source.File           `json:"-"`
}

// Dimensions returns the probed size, or UnknownDimensions.
func (d *ImageDescriptor) Dimensions() Dimensions {
	dims := Dimensions{Width: d.Width, Height: d.Height}
	if !dims.Known() {
		return UnknownDimensions
	}
	return dims
}

// HasDimensions reports whether the image size was probed.
func (d *ImageDescriptor) HasDimensions() bool {
	return Dimensions{Width: d.Width, Height: d.Height}.Known()
}

// MarshalJSON reports UnknownDimensions for unprobed images, so clients
// always receive a size to lay out with.
func (d ImageDescriptor) MarshalJSON() ([]byte, error) {
	type plain ImageDescriptor
	p := plain(d)
	dims := d.Dimensions()
	p.Width, p.Height = dims.Width, dims.Height
	return json.Marshal(struct {
		plain
		DimensionsKnown bool `json:"dimensionsKnown"`
	}{p, d.HasDimensions()})
}
