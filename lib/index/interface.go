package index

import (
	"github.com/ByAlphas/BigBaseAlpha-sub000/lib/document"
)

// IIndexer maintains per-collection equality indexes over single document
// fields. An index maps every observed field value to the set of document
// ids holding that value, letting the store answer literal equality
// queries without scanning the whole collection.
//
// Indexes are an acceleration structure, not a source of truth: the store
// re-verifies every candidate id against the full query predicate, so an
// index may be conservative but must never omit a matching id for a value
// it claims to cover.
//
// Thread-safety: all methods are safe for concurrent use.
type IIndexer interface {
	// CreateIndex builds an index on the given field from the supplied
	// documents (keyed by id). It reports false if the index already
	// existed, in which case it is left untouched.
	CreateIndex(collection, field string, docs map[string]document.Document) bool

	// DropIndex removes the index on the given field. It reports false
	// if no such index existed.
	DropIndex(collection, field string) bool

	// HasIndex reports whether the field is indexed.
	HasIndex(collection, field string) bool

	// Indexes returns the indexed fields of a collection, sorted.
	Indexes(collection string) []string

	// Add records a newly stored document in all indexes of the
	// collection. Fields with unindexable values (arrays, objects) are
	// skipped.
	Add(collection, id string, doc document.Document)

	// Remove erases a deleted document from all indexes of the
	// collection. The passed document must be the stored version.
	Remove(collection, id string, doc document.Document)

	// Update atomically rewrites the index entries of a document after
	// a mutation, given its previous and next stored versions.
	Update(collection, id string, oldDoc, newDoc document.Document)

	// Lookup returns the candidate ids whose indexed field equals the
	// given value. The boolean reports whether the index could answer;
	// false means the field is not indexed (or the value is not
	// indexable) and the caller must fall back to a scan.
	Lookup(collection, field string, value any) ([]string, bool)
}
