package history

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"

	"image-browser/internal/natsort"
)

// EmptySourceKey identifies a collection without images.
const EmptySourceKey = "source:empty"

// MakeSourceKey returns the key identifying a collection by its relative
// paths. Order of the input does not matter.
func MakeSourceKey(relativePaths []string) string {
	if len(relativePaths) == 0 {
		return EmptySourceKey
	}

	sorted := slices.Clone(relativePaths)
	natsort.Strings(sorted)

	return fmt.Sprintf("source:%d:%016x", len(sorted), xxhash.Sum64String(strings.Join(sorted, "\n")))
}

// ResolveRestorePath picks the image to reopen: relativePath when it is
// still part of the collection, otherwise the image at index when that is
// in range, otherwise "".
func ResolveRestorePath(relativePaths []string, relativePath string, index int) string {
	if len(relativePaths) == 0 {
		return ""
	}
	if relativePath != "" && slices.Contains(relativePaths, relativePath) {
		return relativePath
	}
	if index >= 0 && index < len(relativePaths) {
		return relativePaths[index]
	}
	return ""
}
