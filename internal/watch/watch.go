package watch

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"image-browser/internal/filesystem"
	"image-browser/internal/logging"
	"image-browser/internal/metrics"
)

// DefaultDebounce is how long the tree must be quiet before a reload.
const DefaultDebounce = 2 * time.Second

// Watcher monitors a directory tree and calls onChange once per burst of
// changes.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	rootDir   string
	delay     time.Duration
	onChange  func()
	stop      chan struct{}
	done      chan struct{}
	debounce  *time.Timer
	mu        sync.Mutex
	closed    bool
	dirs      int
}

// New starts watching rootDir and every directory below it.
func New(rootDir string, delay time.Duration, onChange func()) (*Watcher, error) {
	if delay <= 0 {
		delay = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsWatcher: fsw,
		rootDir:   rootDir,
		delay:     delay,
		onChange:  onChange,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}

	if err := w.addRecursive(rootDir); err != nil {
		fsw.Close()
		return nil, err
	}

	logging.Info("Watching %d directories under %s (debounce %v)", w.Directories(), rootDir, delay)
	go w.run()
	return w, nil
}

// addRecursive adds dir and its subdirectories. Unreadable subdirectories
// are skipped; an unreadable dir is an error.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			if filesystem.IsSkippable(err) {
				logging.Debug("Not watching %s: %v", path, err)
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fsWatcher.Add(path); err != nil {
			logging.Warn("Failed to watch %s: %v", path, err)
			return nil
		}

		w.mu.Lock()
		w.dirs++
		count := w.dirs
		w.mu.Unlock()
		metrics.WatchedDirectories.Set(float64(count))
		return nil
	})
}

func (w *Watcher) run() {
	defer func() {
		w.mu.Lock()
		w.closed = true
		if w.debounce != nil {
			w.debounce.Stop()
		}
		w.mu.Unlock()
		close(w.done)
	}()

	for {
		select {
		case <-w.stop:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			metrics.WatcherErrors.Inc()
			logging.Warn("Watcher error: %v", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	var eventType string
	switch {
	case event.Has(fsnotify.Create):
		eventType = "create"
	case event.Has(fsnotify.Remove):
		eventType = "remove"
	case event.Has(fsnotify.Rename):
		eventType = "rename"
	case event.Has(fsnotify.Write):
		metrics.WatcherEventsTotal.WithLabelValues("write").Inc()
		return
	default:
		return
	}
	metrics.WatcherEventsTotal.WithLabelValues(eventType).Inc()
	logging.Debug("Watcher event: %s %s", eventType, event.Name)

	if eventType == "create" {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				logging.Warn("Failed to watch new directory %s: %v", event.Name, err)
			}
		}
	}

	w.schedule()
}

// schedule restarts the quiet period.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(w.delay, func() {
		w.mu.Lock()
		closed := w.closed
		w.mu.Unlock()
		if !closed {
			w.onChange()
		}
	})
}

// Directories returns how many directories have been added to the watch.
func (w *Watcher) Directories() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dirs
}

// Stop shuts down the watcher and waits for its loop to exit. A pending
// reload is dropped.
func (w *Watcher) Stop() {
	close(w.stop)
	<-w.done
	w.fsWatcher.Close()
}
