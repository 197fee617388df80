// Package natsort orders file names the way people read them.
//
// Digit runs compare by numeric value ("img-2" sorts before "img-10") and
// comparison ignores case, width and diacritics, so "Photo.jpg" and
// "photo.jpg" are considered equal and fall back to a secondary key.
//
// Collators from golang.org/x/text/collate are not safe for concurrent use,
// so the package keeps a small pool of them.
package natsort
