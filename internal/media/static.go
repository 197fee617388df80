package media

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"

	"image-browser/internal/logging"

	"github.com/disintegration/imaging"
)

// ErrNoRasterizer is returned when no decoder could produce a still frame.
var ErrNoRasterizer = errors.New("no rasterizer could decode image")

// Rasterizer turns encoded image bytes into a flat PNG of the first frame.
type Rasterizer struct {
	Name      string
	Rasterize func(data []byte) ([]byte, error)
}

// Rasterizers returns the still-frame rasterizers in preference order:
// libvips when initialized, then the pure-Go decoders.
func Rasterizers() []Rasterizer {
	var chain []Rasterizer
	if IsVipsAvailable() {
		chain = append(chain, Rasterizer{Name: "vips", Rasterize: RasterizeWithVips})
	}
	return append(chain, Rasterizer{Name: "imaging", Rasterize: RasterizeWithImaging})
}

// RasterizeWithImaging decodes the first frame with the pure-Go decoders
// and encodes it as PNG.
func RasterizeWithImaging(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode still frame: %w", err)
	}

	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("decode still frame: empty image")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode still frame: %w", err)
	}
	return buf.Bytes(), nil
}

// StillFrame runs the chain until one rasterizer succeeds and returns its
// output and name. It returns ErrNoRasterizer wrapping the last failure
// when none does.
func StillFrame(data []byte, chain []Rasterizer) ([]byte, string, error) {
	lastErr := ErrNoRasterizer
	for _, r := range chain {
		out, err := r.Rasterize(data)
		if err == nil {
			return out, r.Name, nil
		}
		logging.Debug("%s rasterizer failed: %v", r.Name, err)
		lastErr = fmt.Errorf("%w: %w", ErrNoRasterizer, err)
	}
	return nil, "", lastErr
}
