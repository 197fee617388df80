package resources

import (
	"context"
	"fmt"

	"image-browser/internal/locator"
	"image-browser/internal/logging"
	"image-browser/internal/media"
	"image-browser/internal/metrics"
	"image-browser/internal/source"
)

// Producer turns image descriptors into locators held by a locator.Store.
type Producer struct {
	store       *locator.Store
	rasterizers func() []media.Rasterizer
}

// NewProducer returns a Producer that registers its output in store.
func NewProducer(store *locator.Store) *Producer {
	return &Producer{store: store, rasterizers: media.Rasterizers}
}

// Store returns the locator store the producer writes to.
func (p *Producer) Store() *locator.Store {
	return p.store
}

// Preview produces the thumbnail-scale locator for img. Kinds that need a
// static preview are rasterized to a PNG still frame; if that fails the
// original bytes are served.
func (p *Producer) Preview(ctx context.Context, img *media.ImageDescriptor) (locator.Locator, error) {
	data, err := p.read(ctx, img)
	if err != nil {
		return "", err
	}

	if img.SourceKind.NeedsStaticPreview() {
		still, rasterizer, err := media.StillFrame(data, p.rasterizers())
		if err == nil {
			metrics.StaticPreviewsTotal.WithLabelValues(rasterizer).Inc()
			return p.store.Create(still, "image/png"), nil
		}
		logging.Debug("Static preview for %s fell back to original bytes: %v", img.RelativePath, err)
		metrics.StaticPreviewsTotal.WithLabelValues("fallback").Inc()
	}

	return p.store.Create(data, img.MimeType), nil
}

// Full produces the full-scale viewer locator for img from its original
// bytes.
func (p *Producer) Full(ctx context.Context, img *media.ImageDescriptor) (locator.Locator, error) {
	data, err := p.read(ctx, img)
	if err != nil {
		return "", err
	}
	return p.store.Create(data, img.MimeType), nil
}

// Revoke frees the bytes behind l.
func (p *Producer) Revoke(l locator.Locator) {
	p.store.Revoke(l)
}

func (p *Producer) read(ctx context.Context, img *media.ImageDescriptor) ([]byte, error) {
	if img.File == nil {
		return nil, fmt.Errorf("read %s: no file handle", img.RelativePath)
	}
	data, err := source.ReadAll(ctx, img.File)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", img.RelativePath, err)
	}
	return data, nil
}
