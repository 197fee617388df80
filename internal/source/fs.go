package source

import (
	"context"
	"io"
	"io/fs"
	"path"
)

// FS returns the directory dir of fsys as a Directory. Use "." for the root.
func FS(fsys fs.FS, dir string) Directory {
	name := path.Base(dir)
	return &fsDir{fsys: fsys, path: dir, name: name}
}

type fsDir struct {
	fsys fs.FS
	path string
	name string
}

func (d *fsDir) Name() string { return d.name }
func (d *fsDir) Kind() Kind   { return KindDirectory }

func (d *fsDir) Entries(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dirEntries, err := fs.ReadDir(d.fsys, d.path)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		full := path.Join(d.path, de.Name())
		if de.IsDir() {
			entries = append(entries, &fsDir{fsys: d.fsys, path: full, name: de.Name()})
			continue
		}
		entries = append(entries, &fsFile{fsys: d.fsys, path: full, name: de.Name(), entry: de})
	}
	return entries, nil
}

type fsFile struct {
	fsys  fs.FS
	path  string
	name  string
	entry fs.DirEntry
}

func (f *fsFile) Name() string { return f.name }
func (f *fsFile) Kind() Kind   { return KindFile }

func (f *fsFile) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.fsys.Open(f.path)
}

func (f *fsFile) Stat(ctx context.Context) (Info, error) {
	if err := ctx.Err(); err != nil {
		return Info{}, err
	}
	fi, err := fs.Stat(f.fsys, f.path)
	if err != nil {
		return Info{}, err
	}
	return Info{Size: fi.Size(), ModTime: fi.ModTime()}, nil
}

func (f *fsFile) InfoHint() (Info, bool) {
	fi, err := f.entry.Info()
	if err != nil {
		return Info{}, false
	}
	return Info{Size: fi.Size(), ModTime: fi.ModTime()}, true
}
