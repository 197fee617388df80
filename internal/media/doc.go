// Package media describes scanned images and turns their bytes into
// something a viewer can display.
//
// An ImageDescriptor is the immutable record the scanner emits for every
// accepted file. It carries metadata only; bytes are read later through its
// source.File handle.
//
// Static previews: animated and heavy lossy formats are decoded to a single
// still frame and re-encoded as PNG for the thumbnail grid. libvips is used
// when InitVips has been called (it also understands HEIC and AVIF); the
// pure-Go decoders from imaging and golang.org/x/image cover the rest.
package media
