// Package source describes the capabilities the scanner needs from the
// host: listing a directory and opening a file. Nothing here reads file
// contents until File.Open is called.
//
// Three adapters are provided:
//
//   - Dir exposes an operating-system directory, with NFS stale-handle
//     retries from the filesystem package.
//   - FS exposes any io/fs.FS (fstest.MapFS in tests, embed.FS, ...).
//   - FileList exposes a flat list of individually selected files, the
//     degraded input used when no directory tree is available.
package source
