// Package store implements the document store kernel: named collections of
// schemaless (or schema-validated) documents with write-through
// persistence, a bounded read cache, secondary equality indexes and a
// declarative query engine.
//
// Core Functionality:
//   - Collection management with optional schema enforcement
//   - Document CRUD with kernel-assigned ids and timestamps
//   - Declarative queries: filter, multi-key sort, offset/limit, projection
//   - Secondary equality indexes, maintained on every mutation
//   - Per-collection and cache statistics plus Prometheus-format counters
//
// Implementation Approach:
//
// The kernel keeps the authoritative document state of every collection in
// memory and writes each mutation through to a pluggable storage backend
// (see lib/backend) before applying it, so reads and queries never wait on
// I/O and a crash loses at most the mutation that failed. Open restores
// the in-memory state from the backend; Close releases it.
//
// Repeated point reads are served by a memory-bounded cache (see
// lib/cache). The cache is strictly a soft layer: any cache anomaly
// degrades to a miss and the read falls through to memory and then to the
// backend. Cached documents expire after a configurable lifetime, which a
// document can override for itself with a numeric _ttl field
// (milliseconds); expiry only ever affects cache residency, never the
// stored document.
//
// Concurrency:
//
// All mutations of a collection (insert, update, delete and index builds)
// serialize through a per-collection resource key (see lib/lockmgr), so
// concurrent mutations apply in submission order and metadata like
// document counts can never drift. Reads and queries are deliberately not
// serialized: they observe the state before or after a concurrent
// mutation, never a partial one, because every mutation swaps complete
// document instances.
//
// Usage Example:
//
//	st := store.New(backend.NewMemoryBackend(), store.DefaultOptions())
//	if err := st.Open(); err != nil {
//		log.Fatal(err)
//	}
//	defer st.Close()
//
//	_ = st.CreateCollection("users", nil)
//	doc, _ := st.Insert("users", document.Document{"name": "alice", "age": 30})
//	docs, _ := st.Query("users", store.Query{
//		Filter: query.Filter{"age": query.Filter{"$gte": 18}},
//		Sort:   []query.SortField{{Field: "name"}},
//		Limit:  10,
//	})
//	_ = doc
//	_ = docs
package store
