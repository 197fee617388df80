package source

import (
	"context"
	"io"
	"io/fs"
	"path/filepath"

	"image-browser/internal/filesystem"
)

// Dir returns the operating-system directory at path as a Directory.
func Dir(path string) Directory {
	return &osDir{path: filepath.Clean(path), name: filepath.Base(path)}
}

// OSPath returns the operating-system path behind an entry created by Dir,
// or "" for entries from other adapters.
func OSPath(e Entry) string {
	switch v := e.(type) {
	case *osDir:
		return v.path
	case *osFile:
		return v.path
	case *listedFile:
		return v.path
	}
	return ""
}

type osDir struct {
	path string
	name string
}

func (d *osDir) Name() string { return d.name }
func (d *osDir) Kind() Kind   { return KindDirectory }

func (d *osDir) Entries(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dirEntries, err := filesystem.ReadDirWithRetry(d.path, filesystem.DefaultRetryConfig())
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		full := filepath.Join(d.path, de.Name())
		if de.IsDir() {
			entries = append(entries, &osDir{path: full, name: de.Name()})
			continue
		}
		if !de.Type().IsRegular() {
			// Symlinks and other special files are not followed.
			continue
		}
		entries = append(entries, &osFile{path: full, name: de.Name(), entry: de})
	}
	return entries, nil
}

type osFile struct {
	path  string
	name  string
	entry fs.DirEntry
}

func (f *osFile) Name() string { return f.name }
func (f *osFile) Kind() Kind   { return KindFile }

func (f *osFile) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return filesystem.OpenWithRetry(f.path, filesystem.DefaultRetryConfig())
}

func (f *osFile) Stat(ctx context.Context) (Info, error) {
	if err := ctx.Err(); err != nil {
		return Info{}, err
	}
	fi, err := filesystem.StatWithRetry(f.path, filesystem.DefaultRetryConfig())
	if err != nil {
		return Info{}, err
	}
	return Info{Size: fi.Size(), ModTime: fi.ModTime()}, nil
}

// InfoHint uses the metadata cached by the directory read where the
// platform provides it.
func (f *osFile) InfoHint() (Info, bool) {
	if f.entry == nil {
		return Info{}, false
	}
	fi, err := f.entry.Info()
	if err != nil {
		return Info{}, false
	}
	return Info{Size: fi.Size(), ModTime: fi.ModTime()}, true
}
