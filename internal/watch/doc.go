// Package watch reloads the collection when its directory tree changes.
//
// A Watcher adds the root and every directory below it to an fsnotify
// watch, hidden directories included, and follows directories created
// later. Create, remove and rename events restart a debounce timer; when
// the tree has been quiet for the configured delay the change callback
// runs once. Write events are counted but do not trigger a reload, since
// content changes do not alter the collection.
//
// Subdirectories that cannot be read are left unwatched, the same way the
// walker skips them. An unreadable root is an error from New.
package watch
