package store

import (
	"io"

	"github.com/ByAlphas/BigBaseAlpha-sub000/lib/document"
	"github.com/ByAlphas/BigBaseAlpha-sub000/lib/query"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IStore is the collection store kernel. It owns the authoritative
// in-memory document state of all collections, writes every mutation
// through to a storage backend and keeps the read cache and the secondary
// indexes consistent along the way.
//
// All operations return ErrNotInitialized when called before Open or after
// Close. Taxonomy errors (see errors.go) are wrapped with context and match
// with errors.Is; schema violations surface as *document.SchemaError and
// malformed filters as *query.UnknownOperatorError, both matchable with
// errors.As. Backend failures propagate unchanged.
//
// Thread-safety: all methods are safe for concurrent use. Mutations of the
// same collection execute in submission order; reads and queries are never
// blocked and may observe the state before or after a concurrent mutation,
// never a partial one.
type IStore interface {
	// Open loads all collections and documents from the backend into
	// memory and starts the cache maintenance. Open is idempotent; a
	// failed Open may be retried.
	Open() error

	// Close stops the cache maintenance and closes the backend. The
	// store cannot be reopened afterwards. Close is idempotent.
	Close() error

	// CreateCollection registers a new named collection, optionally with
	// a schema every inserted and updated document must satisfy. A nil
	// schema means the collection is schemaless. It returns
	// ErrCollectionExists if the name is already registered.
	CreateCollection(name string, schema document.Schema) error

	// Collections returns the names of all registered collections,
	// sorted.
	Collections() ([]string, error)

	// Insert stores a document in a collection and returns the stored
	// version. A missing id field is assigned (see document.NewID), as
	// are missing _created and _modified timestamps; on first insert the
	// two are equal. A caller-supplied string id is kept, which makes a
	// repeated insert under the same id a full overwrite. The input
	// document is never modified.
	Insert(collection string, doc document.Document) (document.Document, error)

	// FindByID returns a single document by id, consulting the cache,
	// then the in-memory state, then the backend. Every non-cache hit
	// repopulates the cache. The boolean reports whether the document
	// exists; a missing document is not an error.
	FindByID(collection, id string) (document.Document, bool, error)

	// Update merges the given fields into an existing document and
	// returns the updated version. The id and the _created timestamp are
	// preserved regardless of the patch's contents, _modified is
	// refreshed. It returns ErrDocumentNotFound if the id does not
	// exist.
	Update(collection, id string, patch document.Document) (document.Document, error)

	// Delete removes a document from memory, backend, indexes and cache.
	// It reports false (and no error) if the id does not exist.
	Delete(collection, id string) (bool, error)

	// Query evaluates a query against a collection and returns the
	// matching documents. The filter is validated before any document is
	// examined, so a malformed filter fails even on an empty collection.
	Query(collection string, q Query) ([]document.Document, error)

	// CreateIndex builds an equality index on a top-level field from the
	// collection's current documents. It reports false if the index
	// already existed.
	CreateIndex(collection, field string) (bool, error)

	// DropIndex removes an index. It reports false if no such index
	// existed.
	DropIndex(collection, field string) (bool, error)

	// Indexes returns the indexed fields of a collection, sorted.
	Indexes(collection string) ([]string, error)

	// Stats returns a snapshot of all collection and cache statistics.
	Stats() (Stats, error)

	// WriteMetrics writes the store's operation and cache counters to w
	// in Prometheus text format.
	WriteMetrics(w io.Writer)
}

// --------------------------------------------------------------------------
// Query Parameters
// --------------------------------------------------------------------------

// Query bundles the parameters of a collection query. The zero value
// matches every document and returns all of them unsorted and complete.
// The json tags allow a whole query to be decoded from a single JSON
// object, which is how the CLI passes queries through.
type Query struct {
	// Filter selects documents (nil matches all), see query.Filter.
	Filter query.Filter `json:"filter,omitempty"`

	// Sort orders the result before pagination is applied.
	Sort []query.SortField `json:"sort,omitempty"`

	// Offset skips the first n documents of the (sorted) result.
	Offset int `json:"offset,omitempty"`

	// Limit caps the number of returned documents. Zero or negative
	// means unlimited.
	Limit int `json:"limit,omitempty"`

	// Projection reduces every returned document to the named fields.
	// Nil returns complete documents, an empty non-nil list returns
	// empty documents.
	Projection []string `json:"projection,omitempty"`
}
