// Command imgctl inspects image collections and reading history from the
// command line.
//
// Usage:
//
//	imgctl <command> [options]
//
// Commands:
//
//	scan     Walk a directory (or the files of a manifest with -files) the
//	         same way the server does and print one line per album, the
//	         totals and the collection's source key. -probe reads image
//	         headers for dimensions and -v lists every image. Lines are
//	         cut to the terminal width.
//
//	history  Print how many collections have remembered positions. With a
//	         source key, print where that collection was left.
//
// Environment:
//
//	MEDIA_DIR    - Directory scanned when none is given (default: /media)
//	DATABASE_DIR - Path to database directory (default: /database)
package main
