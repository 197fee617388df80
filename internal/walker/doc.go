// Package walker turns a directory tree into the sorted list of image
// descriptors the browser works from.
//
// Walk descends a source.Directory depth first with an explicit stack and
// keeps files whose extension is on the image allow-list. It never reads
// file contents unless Options.ProbeDimensions is set.
//
// A subdirectory that cannot be listed because of a permission, lock or
// not-found class error is skipped along with everything under it. Any
// other listing error aborts the walk, as does an error on the root.
//
// Output is ordered naturally by file name, then by relative path, and each
// descriptor's ID is built from its relative path and its position in that
// order. Collect applies the same classification and ordering to a flat list
// of files when no directory tree is available.
package walker
