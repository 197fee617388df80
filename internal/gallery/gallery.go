package gallery

import (
	"context"
	"errors"
	"io/fs"
	"sync"
	"time"

	"image-browser/internal/album"
	"image-browser/internal/filesystem"
	"image-browser/internal/history"
	"image-browser/internal/logging"
	"image-browser/internal/media"
	"image-browser/internal/metrics"
	"image-browser/internal/resources"
	"image-browser/internal/source"
	"image-browser/internal/walker"
)

// ErrNoImages is returned by Load when the source holds no supported
// images.
var ErrNoImages = errors.New("no supported images found")

// Source is where a collection comes from: either a directory tree or a
// flat list of files.
type Source struct {
	Root  source.Directory
	Files []source.File
	Label string
}

// DirSource returns a Source for an OS directory.
func DirSource(path string) Source {
	return Source{Root: source.Dir(path), Label: path}
}

// FileListSource returns a Source for a flat list of files.
func FileListSource(files []source.File, label string) Source {
	return Source{Files: files, Label: label}
}

// IsFileList reports whether the source is a flat file list.
func (s Source) IsFileList() bool {
	return s.Root == nil
}

// Gallery is the current collection of one source.
type Gallery struct {
	manager *resources.Manager
	walker  *walker.Walker
	src     Source

	loadMu sync.Mutex

	// At most one triggered reload runs and one more waits behind it.
	reloadMu     sync.Mutex
	reloading    bool
	reloadQueued bool
	ctx          context.Context

	mu          sync.RWMutex
	images      []*media.ImageDescriptor
	paths       []string
	albums      []album.Summary
	sourceKey   string
	loaded      bool
	loading     bool
	lastLoaded  time.Time
	lastErr     error
	lastScan    walker.Stats
	startTime   time.Time
	onLoad      func()
	loadCounter int
}

// New returns an empty gallery for src.
func New(manager *resources.Manager, w *walker.Walker, src Source) *Gallery {
	return &Gallery{
		manager:   manager,
		walker:    w,
		src:       src,
		sourceKey: history.EmptySourceKey,
		startTime: time.Now(),
	}
}

// SetOnLoad registers a callback invoked after every successful load.
func (g *Gallery) SetOnLoad(callback func()) {
	g.mu.Lock()
	g.onLoad = callback
	g.mu.Unlock()
}

// Start runs the initial load in the background. Reloads triggered later
// run under ctx as well.
func (g *Gallery) Start(ctx context.Context) {
	g.reloadMu.Lock()
	g.ctx = ctx
	g.reloadMu.Unlock()

	go func() {
		logging.Info("Starting initial scan of %s in background...", g.src.Label)
		if err := g.Load(ctx); err != nil && !errors.Is(err, ErrNoImages) {
			logging.Error("Initial scan error: %v", err)
		}
	}()
}

// Load scans the source. On success the collection is replaced and every
// locator of the previous collection is released. On failure the previous
// collection stays in place.
func (g *Gallery) Load(ctx context.Context) error {
	g.loadMu.Lock()
	defer g.loadMu.Unlock()

	g.setLoading(true)
	defer g.setLoading(false)

	images, err := g.scan(ctx)
	if err != nil {
		g.mu.Lock()
		g.lastErr = err
		g.loaded = true
		g.mu.Unlock()
		return err
	}

	g.replace(images)

	if len(images) == 0 {
		g.mu.Lock()
		g.lastErr = ErrNoImages
		g.mu.Unlock()
		logging.Warn("No supported images found in %s", g.src.Label)
		return ErrNoImages
	}
	return nil
}

// Reload is Load for callers that react to changes of the source.
func (g *Gallery) Reload(ctx context.Context) error {
	logging.Info("Reloading %s", g.src.Label)
	return g.Load(ctx)
}

// TriggerReload starts a reload in the background. Triggers arriving while
// a reload runs collapse into a single follow-up reload.
func (g *Gallery) TriggerReload() {
	g.reloadMu.Lock()
	defer g.reloadMu.Unlock()

	if g.reloading {
		g.reloadQueued = true
		logging.Debug("Reload already in progress, queued one more")
		return
	}
	g.reloading = true

	ctx := g.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	go g.reloadLoop(ctx)
}

func (g *Gallery) reloadLoop(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			g.finishReloads()
			return
		}
		if err := g.Reload(ctx); err != nil && !errors.Is(err, ErrNoImages) && !errors.Is(err, context.Canceled) {
			logging.Error("Triggered reload failed: %v", err)
		}

		g.reloadMu.Lock()
		if !g.reloadQueued {
			g.reloading = false
			g.reloadMu.Unlock()
			return
		}
		g.reloadQueued = false
		g.reloadMu.Unlock()
	}
}

func (g *Gallery) finishReloads() {
	g.reloadMu.Lock()
	g.reloading = false
	g.reloadQueued = false
	g.reloadMu.Unlock()
}

// IsReloading reports whether a triggered reload is running or queued.
func (g *Gallery) IsReloading() bool {
	g.reloadMu.Lock()
	defer g.reloadMu.Unlock()
	return g.reloading
}

func (g *Gallery) scan(ctx context.Context) ([]*media.ImageDescriptor, error) {
	if g.src.IsFileList() {
		return g.walker.Collect(ctx, g.src.Files)
	}
	return g.walker.Walk(ctx, g.src.Root)
}

func (g *Gallery) replace(images []*media.ImageDescriptor) {
	paths := make([]string, len(images))
	for i, img := range images {
		paths[i] = img.RelativePath
	}
	albums := album.Build(images)
	key := history.MakeSourceKey(paths)

	g.manager.ReleaseAll()
	g.manager.SetImages(images)

	g.mu.Lock()
	g.images = images
	g.paths = paths
	g.albums = albums
	g.sourceKey = key
	g.loaded = true
	g.lastLoaded = time.Now()
	g.lastErr = nil
	g.lastScan = g.walker.LastStats()
	g.loadCounter++
	onLoad := g.onLoad
	g.mu.Unlock()

	metrics.CollectionImages.Set(float64(len(images)))
	metrics.CollectionAlbums.Set(float64(len(albums)))
	logging.Info("Collection loaded: %d images in %d albums (key %s)", len(images), len(albums), key)

	if onLoad != nil {
		onLoad()
	}
}

func (g *Gallery) setLoading(v bool) {
	g.mu.Lock()
	g.loading = v
	g.mu.Unlock()
}

// Images returns the collection below path, all of it for an empty path.
// The returned slice must not be modified.
func (g *Gallery) Images(path string) []*media.ImageDescriptor {
	g.mu.RLock()
	images := g.images
	g.mu.RUnlock()
	return album.Filter(images, path)
}

// RelativePaths returns the relative paths of the collection in order.
func (g *Gallery) RelativePaths() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.paths
}

// Albums returns the albums of the collection.
func (g *Gallery) Albums() []album.Summary {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.albums
}

// SourceKey returns the history key of the collection.
func (g *Gallery) SourceKey() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.sourceKey
}

// Source returns the gallery's source.
func (g *Gallery) Source() Source {
	return g.src
}

// Manager returns the resource manager of the collection.
func (g *Gallery) Manager() *resources.Manager {
	return g.manager
}

// IsReady reports whether the first load has finished, successfully or
// not.
func (g *Gallery) IsReady() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.loaded
}

// LastError returns the error of the most recent load, if it failed.
func (g *Gallery) LastError() error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.lastErr
}

// Status contains health and collection information.
type Status struct {
	Ready      bool         `json:"ready"`
	Loading    bool         `json:"loading"`
	Source     string       `json:"source"`
	FileList   bool         `json:"fileList"`
	StartTime  time.Time    `json:"startTime"`
	Uptime     string       `json:"uptime"`
	LastLoaded time.Time    `json:"lastLoaded,omitempty"`
	Loads      int          `json:"loads"`
	Images     int          `json:"images"`
	Albums     int          `json:"albums"`
	Error      string       `json:"error,omitempty"`
	LastScan   walker.Stats `json:"lastScan"`
}

// Status returns the current gallery status.
func (g *Gallery) Status() Status {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return Status{
		Ready:      g.loaded,
		Loading:    g.loading,
		Source:     g.src.Label,
		FileList:   g.src.IsFileList(),
		StartTime:  g.startTime,
		Uptime:     time.Since(g.startTime).String(),
		LastLoaded: g.lastLoaded,
		Loads:      g.loadCounter,
		Images:     len(g.images),
		Albums:     len(g.albums),
		Error:      UserMessage(g.lastErr),
		LastScan:   g.lastScan,
	}
}

// GetStats implements metrics.StatsProvider.
func (g *Gallery) GetStats() metrics.Stats {
	g.mu.RLock()
	images, albums := len(g.images), len(g.albums)
	g.mu.RUnlock()

	cache := g.manager.Stats()
	return metrics.Stats{
		TotalImages:      images,
		TotalAlbums:      albums,
		PreviewResident:  cache.PreviewResident,
		LightboxResident: cache.LightboxResident,
	}
}

// UserMessage turns a load error into one readable sentence. Cancellation
// yields no message.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return ""
	case errors.Is(err, ErrNoImages):
		return "No image files found in this folder."
	case errors.Is(err, fs.ErrPermission), filesystem.IsSkippable(err):
		return "The folder is not accessible right now (it may be read-only or in use). Choose another folder."
	}
	if msg := err.Error(); msg != "" {
		return "Failed to read folder: " + msg
	}
	return "Failed to read folder."
}
