package resources

import (
	"context"
	"errors"
	"sync"

	"image-browser/internal/cache"
	"image-browser/internal/locator"
	"image-browser/internal/logging"
	"image-browser/internal/media"
)

// ErrUnknownImage is returned for ids that are not part of the current
// collection.
var ErrUnknownImage = errors.New("unknown image")

// Cache names used in logs and metrics.
const (
	PreviewCacheName  = "preview"
	LightboxCacheName = "lightbox"
)

// Options configures a Manager. Every field is used as given; start from
// DefaultOptions to get the standard sizes.
type Options struct {
	PreviewCapacity int
	PreloadDistance int
	ReleaseDistance int
	Observer        cache.Observer
}

// DefaultOptions returns the standard cache sizes.
func DefaultOptions() Options {
	return Options{
		PreviewCapacity: cache.DefaultCapacity,
		PreloadDistance: cache.DefaultPreloadDistance,
		ReleaseDistance: cache.DefaultReleaseDistance,
	}
}

// Stats describes the current cache occupancy.
type Stats struct {
	Images           int   `json:"images"`
	PreviewResident  int   `json:"previewResident"`
	PreviewPending   int   `json:"previewPending"`
	PreviewCapacity  int   `json:"previewCapacity"`
	LightboxResident int   `json:"lightboxResident"`
	LightboxPending  int   `json:"lightboxPending"`
	PreloadDistance  int   `json:"preloadDistance"`
	ReleaseDistance  int   `json:"releaseDistance"`
	Locators         int   `json:"locators"`
	LocatorBytes     int64 `json:"locatorBytes"`
}

// Manager is the facade over the preview and lightbox caches of one
// collection.
type Manager struct {
	producer *Producer
	previews *cache.LRU[media.ID, locator.Locator]
	lightbox *cache.Window[media.ID, locator.Locator]

	mu      sync.RWMutex
	catalog map[media.ID]*media.ImageDescriptor
}

// NewManager builds a Manager. It fails with cache.ErrInvalidCapacity for
// a preview capacity below one and with cache.ErrInvalidDistance for invalid
// lightbox distances.
func NewManager(producer *Producer, opts Options) (*Manager, error) {
	m := &Manager{
		producer: producer,
		catalog:  make(map[media.ID]*media.ImageDescriptor),
	}

	dispose := func(_ media.ID, l locator.Locator) { producer.Revoke(l) }
	flightKey := func(id media.ID) string { return string(id) }

	previews, err := cache.NewLRU(cache.Options[media.ID, locator.Locator]{
		Name:     PreviewCacheName,
		Capacity: opts.PreviewCapacity,
		Produce: func(ctx context.Context, id media.ID) (locator.Locator, error) {
			img, ok := m.lookup(id)
			if !ok {
				return "", ErrUnknownImage
			}
			return producer.Preview(ctx, img)
		},
		Dispose:   dispose,
		FlightKey: flightKey,
		Observer:  opts.Observer,
	})
	if err != nil {
		return nil, err
	}

	lightbox, err := cache.NewWindow(cache.WindowOptions[media.ID, locator.Locator]{
		Name:            LightboxCacheName,
		PreloadDistance: opts.PreloadDistance,
		ReleaseDistance: opts.ReleaseDistance,
		Produce: func(ctx context.Context, id media.ID) (locator.Locator, error) {
			img, ok := m.lookup(id)
			if !ok {
				return "", ErrUnknownImage
			}
			return producer.Full(ctx, img)
		},
		Dispose:   dispose,
		FlightKey: flightKey,
		Observer:  opts.Observer,
	})
	if err != nil {
		return nil, err
	}

	m.previews = previews
	m.lightbox = lightbox
	return m, nil
}

func (m *Manager) lookup(id media.ID) (*media.ImageDescriptor, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	img, ok := m.catalog[id]
	return img, ok
}

// SetImages replaces the set of images the manager can produce locators
// for. Resident locators are not touched; call ReleaseAll first when the
// collection changes.
func (m *Manager) SetImages(images []*media.ImageDescriptor) {
	catalog := make(map[media.ID]*media.ImageDescriptor, len(images))
	for _, img := range images {
		catalog[img.ID] = img
	}

	m.mu.Lock()
	m.catalog = catalog
	m.mu.Unlock()
}

// Image returns the descriptor for id.
func (m *Manager) Image(id media.ID) (*media.ImageDescriptor, bool) {
	return m.lookup(id)
}

// EnsurePreviewURL returns the preview locator for id, producing it on
// first use. It returns ErrUnknownImage when id is not in the collection.
func (m *Manager) EnsurePreviewURL(ctx context.Context, id media.ID) (locator.Locator, error) {
	if _, ok := m.lookup(id); !ok {
		return "", ErrUnknownImage
	}
	return m.previews.Ensure(ctx, id)
}

// PreviewURL returns the preview locator for id if it is resident.
func (m *Manager) PreviewURL(id media.ID) (locator.Locator, bool) {
	return m.previews.Get(id)
}

// ReleasePreviewURL frees the preview locator for id, if any.
func (m *Manager) ReleasePreviewURL(id media.ID) {
	m.previews.Release(id)
}

// SyncLightboxWindow moves the viewer cursor to items[index], making its
// neighbourhood resident and releasing distant locators. Items are added
// to the collection if they were not already known.
func (m *Manager) SyncLightboxWindow(ctx context.Context, items []*media.ImageDescriptor, index int) (map[media.ID]locator.Locator, error) {
	keys := make([]media.ID, len(items))

	m.mu.Lock()
	for i, img := range items {
		keys[i] = img.ID
		if _, ok := m.catalog[img.ID]; !ok {
			m.catalog[img.ID] = img
		}
	}
	m.mu.Unlock()

	return m.lightbox.Sync(ctx, keys, index)
}

// LightboxURL returns the viewer locator for id if it is resident.
func (m *Manager) LightboxURL(id media.ID) (locator.Locator, bool) {
	return m.lightbox.Get(id)
}

// LightboxSnapshot returns every resident viewer locator.
func (m *Manager) LightboxSnapshot() map[media.ID]locator.Locator {
	return m.lightbox.Snapshot()
}

// ReleaseAllLightboxURLs frees every viewer locator. Called when the
// viewer closes.
func (m *Manager) ReleaseAllLightboxURLs() {
	if n := m.lightbox.ReleaseAll(); n > 0 {
		logging.Debug("Released %d lightbox locators", n)
	}
}

// ReleaseAll frees every locator in both caches. It is safe to call when
// both are already empty.
func (m *Manager) ReleaseAll() {
	previews := m.previews.ReleaseAll()
	lightbox := m.lightbox.ReleaseAll()
	if previews+lightbox > 0 {
		logging.Debug("Released %d preview and %d lightbox locators", previews, lightbox)
	}
}

// TrimPreviews evicts least recently used previews until at most n remain.
func (m *Manager) TrimPreviews(n int) int {
	return m.previews.Trim(n)
}

// PreviewCapacity returns the configured preview cache size.
func (m *Manager) PreviewCapacity() int {
	return m.previews.Capacity()
}

// Stats reports cache occupancy.
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	images := len(m.catalog)
	m.mu.RUnlock()

	preload, release := m.lightbox.Distances()
	store := m.producer.Store()
	return Stats{
		Images:           images,
		PreviewResident:  m.previews.Len(),
		PreviewPending:   m.previews.PendingCount(),
		PreviewCapacity:  m.previews.Capacity(),
		LightboxResident: m.lightbox.Len(),
		LightboxPending:  m.lightbox.PendingCount(),
		PreloadDistance:  preload,
		ReleaseDistance:  release,
		Locators:         store.Len(),
		LocatorBytes:     store.Bytes(),
	}
}
