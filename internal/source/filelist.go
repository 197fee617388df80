package source

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FileList turns a flat list of operating-system paths into file handles
// that implement PathHinter. When root is non-empty, each file's path hint
// is its path relative to root; otherwise the hint is the base name. Paths
// outside root keep only their base name.
func FileList(paths []string, root string) []File {
	files := make([]File, 0, len(paths))
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		files = append(files, &listedFile{
			osFile: osFile{path: filepath.Clean(p), name: filepath.Base(p)},
			hint:   relativeHint(p, root),
		})
	}
	return files
}

// ReadFileList reads a newline separated manifest of paths. Blank lines and
// lines starting with '#' are ignored. Relative entries are resolved
// against the manifest's directory.
func ReadFileList(manifest string) ([]string, error) {
	f, err := os.Open(manifest)
	if err != nil {
		return nil, fmt.Errorf("open file list: %w", err)
	}
	defer f.Close()
	return parseFileList(f, filepath.Dir(manifest))
}

func parseFileList(r io.Reader, base string) ([]string, error) {
	var paths []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(base, line)
		}
		paths = append(paths, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read file list: %w", err)
	}
	return paths, nil
}

func relativeHint(p, root string) string {
	if root != "" {
		if rel, err := filepath.Rel(root, p); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return path.Base(filepath.ToSlash(p))
}

type listedFile struct {
	osFile
	hint string
}

func (f *listedFile) PathHint() string { return f.hint }
