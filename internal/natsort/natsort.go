package natsort

import (
	"sort"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var collators = sync.Pool{
	New: func() any {
		return collate.New(language.Und, collate.Numeric, collate.Loose)
	},
}

// Compare returns -1, 0 or +1 depending on whether a sorts before, equal to
// or after b.
func Compare(a, b string) int {
	c := collators.Get().(*collate.Collator)
	defer collators.Put(c)
	return c.CompareString(a, b)
}

// Less reports whether a sorts strictly before b.
func Less(a, b string) bool {
	return Compare(a, b) < 0
}

// Strings sorts s in place in natural order. Equal elements keep their
// relative order.
func Strings(s []string) {
	c := collators.Get().(*collate.Collator)
	defer collators.Put(c)
	sort.SliceStable(s, func(i, j int) bool {
		return c.CompareString(s[i], s[j]) < 0
	})
}

// By sorts items in place using the given keys in priority order: the first
// key decides unless it compares equal, then the second, and so on. The sort
// is stable.
func By[T any](items []T, keys ...func(T) string) {
	c := collators.Get().(*collate.Collator)
	defer collators.Put(c)
	sort.SliceStable(items, func(i, j int) bool {
		for _, key := range keys {
			if r := c.CompareString(key(items[i]), key(items[j])); r != 0 {
				return r < 0
			}
		}
		return false
	})
}
