// Package index provides in-memory equality indexes over document fields.
//
// An index maps every observed value of one field to the set of document
// ids holding it, keyed by a canonical rendering that follows the
// document package's equality semantics (all numeric widths collapse to
// one key, kinds never collide). The store consults an index when a query
// contains a literal equality clause on an indexed field and re-verifies
// every candidate against the full predicate, so indexes accelerate
// queries without participating in their correctness.
//
// Arrays, objects and unsupported types are not indexable; lookups
// involving them report false and the store falls back to a full scan.
package index
