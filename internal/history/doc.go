// Package history remembers where the user stopped reading each collection.
//
// A collection is identified by its source key, a hash of its naturally
// sorted relative paths plus the image count. For each key the store keeps
// the last viewed image, the last viewed image of every album and the most
// recently visited album. Only the MaxSources most recently updated
// collections are kept.
//
// State lives in a single SQLite file under the database directory.
package history
