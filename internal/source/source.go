package source

import (
	"context"
	"io"
	"time"
)

// Kind distinguishes files from directories in a listing.
type Kind int

const (
	KindFile Kind = iota
	KindDirectory
)

func (k Kind) String() string {
	if k == KindDirectory {
		return "directory"
	}
	return "file"
}

// Entry is one child of a Directory listing. Concrete entries also
// implement Directory or File according to their Kind.
type Entry interface {
	Name() string
	Kind() Kind
}

// Directory is a listable container of entries.
type Directory interface {
	Entry
	Entries(ctx context.Context) ([]Entry, error)
}

// File is a handle to a file's bytes. Open is the only call that reads
// content.
type File interface {
	Entry
	Open(ctx context.Context) (io.ReadCloser, error)
	Stat(ctx context.Context) (Info, error)
}

// Info is the cheap metadata the host exposes for a file.
type Info struct {
	Size    int64
	ModTime time.Time
}

// InfoHinter is implemented by entries whose metadata was already gathered
// during listing, so the scanner can skip a separate Stat call.
type InfoHinter interface {
	InfoHint() (Info, bool)
}

// PathHinter is implemented by entries that know their path relative to
// the collection root, which is how flat file lists preserve structure.
type PathHinter interface {
	PathHint() string
}

// ReadAll opens f and returns its full contents.
func ReadAll(ctx context.Context, f File) ([]byte, error) {
	rc, err := f.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
