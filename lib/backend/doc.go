// Package backend defines the durable storage interface of the database
// and ships two implementations of it.
//
// A backend persists two things: the set of registered collections (with
// their schema blobs) and full document bodies keyed by collection and id.
// It performs no validation, caching or querying; the store above it owns
// all semantics and writes through synchronously on every mutation.
// Backend writes are therefore plain upserts and deletes are idempotent.
//
// Implementations:
//
//   - NewMemoryBackend: process-local maps, for tests and ephemeral
//     instances
//   - NewSQLiteBackend: a SQLite database with one row per document,
//     bodies encoded through a pluggable codec (json by default)
//
// The backend/testing sub-package provides a conformance suite and
// benchmarks that every implementation is expected to pass.
package backend
