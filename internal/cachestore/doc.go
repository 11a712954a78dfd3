// Package cachestore persists cache records in an embedded SQLite key-value
// table.
//
// The store survives process restarts and tolerates a corrupt or incompatible
// database file by recreating it from scratch on open: the cache is a
// performance aid, so losing stale entries beats refusing to run. Records are
// opaque strings to this package; the cache package owns their encoding.
package cachestore
