// Package store holds the domain entities and their persistence. The
// Postgres implementation writes with upserts and conditioned deletes so
// replayed mutations converge to the same state; the memory implementation
// backs unit tests. Cached wraps any Store with tag-scoped read-through
// caching so reconciliation invalidations are visible to cached reads.
package store
