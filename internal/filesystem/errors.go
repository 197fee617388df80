package filesystem

import (
	"errors"
	"io/fs"
	"syscall"
)

// skippableErrnos are raw errno values in the permission / modification /
// not-found class that os does not already map onto fs.ErrPermission or
// fs.ErrNotExist.
var skippableErrnos = []syscall.Errno{
	syscall.EROFS,
	syscall.EBUSY,
	syscall.ENOTDIR,
	syscall.ELOOP,
}

// IsSkippable reports whether an error raised while listing a subdirectory
// should skip that subtree instead of aborting the walk.
func IsSkippable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, fs.ErrPermission) || errors.Is(err, fs.ErrNotExist) {
		return true
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		for _, e := range skippableErrnos {
			if errno == e {
				return true
			}
		}
	}
	return false
}
