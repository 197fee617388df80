package walker

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sync"
	"time"

	"image-browser/internal/filesystem"
	"image-browser/internal/logging"
	"image-browser/internal/media"
	"image-browser/internal/mediatypes"
	"image-browser/internal/metrics"
	"image-browser/internal/natsort"
	"image-browser/internal/source"
	"image-browser/internal/workers"
)

// Options configures a Walker.
type Options struct {
	// ProbeDimensions decodes each image header to fill Width and Height.
	ProbeDimensions bool

	// ProbeWorkers bounds concurrent header probes. Defaults to
	// workers.ForIO(16).
	ProbeWorkers int
}

// Stats summarizes one walk.
type Stats struct {
	Directories     int           `json:"directories"`
	FilesSeen       int           `json:"filesSeen"`
	Images          int           `json:"images"`
	SkippedSubtrees int           `json:"skippedSubtrees"`
	ProbeFailures   int           `json:"probeFailures"`
	Duration        time.Duration `json:"duration"`
}

// Walker scans directory trees into image descriptors. It is safe for
// concurrent use; each call keeps its own state.
type Walker struct {
	opts Options

	mu        sync.Mutex
	lastStats Stats
}

// New returns a Walker with the given options.
func New(opts Options) *Walker {
	if opts.ProbeWorkers <= 0 {
		opts.ProbeWorkers = workers.ForIO(16)
	}
	return &Walker{opts: opts}
}

// LastStats returns the statistics of the most recent successful walk.
func (w *Walker) LastStats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastStats
}

type frame struct {
	dir  source.Directory
	path string
}

// Walk lists root recursively and returns its images in natural order.
func (w *Walker) Walk(ctx context.Context, root source.Directory) ([]*media.ImageDescriptor, error) {
	start := time.Now()
	var stats Stats

	images, err := w.walk(ctx, root, &stats)
	if err == nil {
		err = w.finish(ctx, images, &stats)
	}
	w.record("directory", start, images, &stats, err)
	if err != nil {
		return nil, err
	}
	return images, nil
}

func (w *Walker) walk(ctx context.Context, root source.Directory, stats *Stats) ([]*media.ImageDescriptor, error) {
	var images []*media.ImageDescriptor
	stack := []frame{{dir: root}}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := current.dir.Entries(ctx)
		if err != nil {
			if current.path == "" {
				return nil, fmt.Errorf("list root directory: %w", err)
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if filesystem.IsSkippable(err) {
				logging.Warn("Skipping unreadable directory %s: %v", current.path, err)
				stats.SkippedSubtrees++
				metrics.WalkSkippedSubtreesTotal.Inc()
				continue
			}
			return nil, fmt.Errorf("list directory %s: %w", current.path, err)
		}
		stats.Directories++

		for _, entry := range entries {
			rel := joinRel(current.path, entry.Name())

			switch entry.Kind() {
			case source.KindDirectory:
				if dir, ok := entry.(source.Directory); ok {
					stack = append(stack, frame{dir: dir, path: rel})
				}
			case source.KindFile:
				stats.FilesSeen++
				file, ok := entry.(source.File)
				if !ok || !mediatypes.IsSupportedImage(entry.Name()) {
					continue
				}
				desc, err := describe(ctx, file, rel)
				if err != nil {
					if filesystem.IsSkippable(err) {
						logging.Debug("Skipping vanished file %s: %v", rel, err)
						continue
					}
					return nil, fmt.Errorf("stat %s: %w", rel, err)
				}
				images = append(images, desc)
			}
		}
	}

	return images, nil
}

// Collect builds sorted descriptors from a flat list of files. Files that
// implement source.PathHinter keep their hinted relative path; others use
// their name. There is no tree, so a single unreadable file aborts.
func (w *Walker) Collect(ctx context.Context, files []source.File) ([]*media.ImageDescriptor, error) {
	start := time.Now()
	var stats Stats

	images, err := w.collect(ctx, files, &stats)
	if err == nil {
		err = w.finish(ctx, images, &stats)
	}
	w.record("file_list", start, images, &stats, err)
	if err != nil {
		return nil, err
	}
	return images, nil
}

func (w *Walker) collect(ctx context.Context, files []source.File, stats *Stats) ([]*media.ImageDescriptor, error) {
	images := make([]*media.ImageDescriptor, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stats.FilesSeen++
		if !mediatypes.IsSupportedImage(f.Name()) {
			continue
		}

		rel := f.Name()
		if h, ok := f.(source.PathHinter); ok && h.PathHint() != "" {
			rel = h.PathHint()
		}

		desc, err := describe(ctx, f, rel)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", rel, err)
		}
		images = append(images, desc)
	}
	return images, nil
}

// describe builds the metadata-only descriptor for an accepted file.
func describe(ctx context.Context, f source.File, rel string) (*media.ImageDescriptor, error) {
	info, ok := source.Info{}, false
	if h, isHinter := f.(source.InfoHinter); isHinter {
		info, ok = h.InfoHint()
	}
	if !ok {
		var err error
		if info, err = f.Stat(ctx); err != nil {
			return nil, err
		}
	}

	name := f.Name()
	return &media.ImageDescriptor{
		Name:         name,
		RelativePath: rel,
		ModTime:      info.ModTime,
		Size:         info.Size,
		SourceKind:   mediatypes.GetSourceKind(name),
		MimeType:     mediatypes.GetMimeType(name),
		File:         f,
	}, nil
}

// finish sorts images, assigns ordinals and IDs, and probes dimensions when
// enabled.
func (w *Walker) finish(ctx context.Context, images []*media.ImageDescriptor, stats *Stats) error {
	Sort(images)
	for i, img := range images {
		img.Ordinal = i
		img.ID = media.MakeID(img.RelativePath, i)
	}
	stats.Images = len(images)

	if !w.opts.ProbeDimensions || len(images) == 0 {
		return nil
	}

	var mu sync.Mutex
	err := workers.Each(ctx, len(images), w.opts.ProbeWorkers, func(i int) {
		img := images[i]
		dims, err := media.ProbeDimensions(ctx, img.File)
		if err != nil {
			logging.Debug("Could not probe dimensions of %s: %v", img.RelativePath, err)
			metrics.WalkProbeFailuresTotal.Inc()
			mu.Lock()
			stats.ProbeFailures++
			mu.Unlock()
			return
		}
		img.Width, img.Height = dims.Width, dims.Height
	})
	if err != nil {
		return fmt.Errorf("probe dimensions: %w", err)
	}
	return nil
}

func (w *Walker) record(mode string, start time.Time, images []*media.ImageDescriptor, stats *Stats, err error) {
	stats.Duration = time.Since(start)
	metrics.WalkDuration.Observe(stats.Duration.Seconds())
	metrics.WalkDirectoriesTotal.Add(float64(stats.Directories))
	metrics.WalkFilesSeenTotal.Add(float64(stats.FilesSeen))

	if err != nil {
		metrics.WalkRunsTotal.WithLabelValues(mode, "error").Inc()
		if errors.Is(err, context.Canceled) {
			logging.Info("Walk canceled after %v", stats.Duration)
		} else {
			logging.Error("Walk failed after %v: %v", stats.Duration, err)
		}
		return
	}

	metrics.WalkRunsTotal.WithLabelValues(mode, "success").Inc()
	metrics.WalkLastImages.Set(float64(len(images)))
	metrics.WalkLastTimestamp.Set(float64(time.Now().Unix()))

	logging.Info("Walk complete: %d images from %d files in %d directories in %v (skipped: %d)",
		stats.Images, stats.FilesSeen, stats.Directories, stats.Duration, stats.SkippedSubtrees)

	w.mu.Lock()
	w.lastStats = *stats
	w.mu.Unlock()
}

// Sort orders images naturally by name, then by relative path.
func Sort(images []*media.ImageDescriptor) {
	natsort.By(images,
		func(d *media.ImageDescriptor) string { return d.Name },
		func(d *media.ImageDescriptor) string { return d.RelativePath },
	)
}

func joinRel(dir, name string) string {
	if dir == "" {
		return name
	}
	return path.Join(dir, name)
}
