// Package registry keeps the set of per-document indexes of one artifact
// store and answers queries across all of them.
//
// Indexes are loaded lazily on first use and cached. Every cached entry has
// its own RWMutex: searches hold the read lock, while loads, rebuilds and
// removals hold the write lock, so a document is never searched while it is
// being replaced.
//
// SearchAll searches every complete document with the global k, merges the
// per-document results by score and keeps the best k. A document that cannot
// be loaded or searched is logged and skipped.
package registry
