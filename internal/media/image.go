package media

import (
	"context"
	"fmt"
	"image"
	"io"

	"image-browser/internal/logging"
	"image-browser/internal/source"

	// Image format decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"  // BMP format support
	_ "golang.org/x/image/webp" // WebP format support
)

// DecodeDimensions reads just enough of r to report the image size.
func DecodeDimensions(r io.Reader) (Dimensions, error) {
	config, _, err := image.DecodeConfig(r)
	if err != nil {
		return Dimensions{}, err
	}
	return Dimensions{Width: config.Width, Height: config.Height}, nil
}

// ProbeDimensions opens f and decodes its header. Formats without a Go
// decoder (HEIC, AVIF) return an error and keep the unknown sentinel.
func ProbeDimensions(ctx context.Context, f source.File) (Dimensions, error) {
	rc, err := f.Open(ctx)
	if err != nil {
		return Dimensions{}, err
	}
	defer func() {
		if err := rc.Close(); err != nil {
			logging.Warn("failed to close image file %s: %v", f.Name(), err)
		}
	}()

	dims, err := DecodeDimensions(rc)
	if err != nil {
		return Dimensions{}, fmt.Errorf("decode header of %s: %w", f.Name(), err)
	}
	return dims, nil
}
