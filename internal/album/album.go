// Package album groups a collection's images by their top-level
// directory.
package album

import (
	"strings"

	"image-browser/internal/media"
	"image-browser/internal/natsort"
)

// Summary describes one album.
type Summary struct {
	Path              string   `json:"path"`
	Title             string   `json:"title"`
	CoverImageID      media.ID `json:"coverImageId"`
	CoverRelativePath string   `json:"coverRelativePath"`
	ImageCount        int      `json:"imageCount"`
}

// NormalizePath strips leading and trailing slashes.
func NormalizePath(path string) string {
	return strings.Trim(path, "/")
}

// PathOf returns the album an image path belongs to, or "" for images at
// the collection root.
func PathOf(relativePath string) string {
	i := strings.IndexByte(relativePath, '/')
	if i <= 0 {
		return ""
	}
	return relativePath[:i]
}

// IsUnderPath reports whether relativePath lies below path. Every path is
// under the empty path.
func IsUnderPath(relativePath, path string) bool {
	normalized := NormalizePath(path)
	if normalized == "" {
		return true
	}
	return strings.HasPrefix(relativePath, normalized+"/")
}

// Filter returns the images below path. The input slice is returned as-is
// for an empty path.
func Filter(images []*media.ImageDescriptor, path string) []*media.ImageDescriptor {
	normalized := NormalizePath(path)
	if normalized == "" {
		return images
	}

	filtered := make([]*media.ImageDescriptor, 0)
	for _, img := range images {
		if IsUnderPath(img.RelativePath, normalized) {
			filtered = append(filtered, img)
		}
	}
	return filtered
}

// Build groups images by first path segment. Albums are ordered naturally
// by path; each album's cover is its first image in natural path order.
func Build(images []*media.ImageDescriptor) []Summary {
	groups := make(map[string][]*media.ImageDescriptor)
	var paths []string

	for _, img := range images {
		path := PathOf(img.RelativePath)
		if path == "" {
			continue
		}
		if _, ok := groups[path]; !ok {
			paths = append(paths, path)
		}
		groups[path] = append(groups[path], img)
	}

	natsort.Strings(paths)

	albums := make([]Summary, 0, len(paths))
	for _, path := range paths {
		list := groups[path]
		cover := list[0]
		for _, img := range list[1:] {
			if natsort.Less(img.RelativePath, cover.RelativePath) {
				cover = img
			}
		}
		albums = append(albums, Summary{
			Path:              path,
			Title:             path,
			CoverImageID:      cover.ID,
			CoverRelativePath: cover.RelativePath,
			ImageCount:        len(list),
		})
	}
	return albums
}
