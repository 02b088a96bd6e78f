package backend

import (
	"github.com/ByAlphas/BigBaseAlpha-sub000/lib/document"
)

// IBackend is the durable storage collaborator of the store. It persists
// collection registrations and full document bodies and nothing else: no
// caching, no validation, no querying. The store treats it as eventually
// consistent and keeps its own authoritative in-memory state, so backend
// semantics are deliberately lenient (writes are upserts, deletes are
// idempotent).
//
// Thread-safety: implementations must tolerate concurrent calls. The
// store serializes writes per collection but reads may happen at any time.
type IBackend interface {
	// EnsureCollection registers a collection and its schema blob. The
	// call is idempotent; re-registering overwrites the stored schema.
	// A nil schema is valid and means the collection is schemaless.
	EnsureCollection(name string, schema []byte) error

	// Collections returns all registered collections mapped to their
	// schema blob (nil for schemaless collections).
	Collections() (map[string][]byte, error)

	// Insert persists a document body under the given collection and id.
	// An existing body under the same id is overwritten.
	Insert(collection, id string, doc document.Document) error

	// Update persists a new full document body under the given id. It
	// behaves exactly like Insert; the distinction exists so backends
	// can account for the two separately if they care.
	Update(collection, id string, doc document.Document) error

	// Delete removes the document body under the given id. Deleting a
	// missing document is not an error.
	Delete(collection, id string) error

	// FindByID loads a single document body. The boolean reports whether
	// the document exists; a missing document is not an error.
	FindByID(collection, id string) (document.Document, bool, error)

	// ListDocuments loads all document bodies of a collection keyed by
	// id. An unknown collection yields an empty map.
	ListDocuments(collection string) (map[string]document.Document, error)

	// Close releases the backend's resources. The backend must not be
	// used afterwards.
	Close() error
}
