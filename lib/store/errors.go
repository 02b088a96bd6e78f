package store

import "errors"

// --------------------------------------------------------------------------
// Error Taxonomy
// --------------------------------------------------------------------------

// Sentinel errors of the store. They are wrapped with context where they
// occur, so match them with errors.Is rather than by equality. Two further
// error kinds complete the taxonomy but live with their packages:
// *document.SchemaError for schema violations and
// *query.UnknownOperatorError for malformed filters.
var (
	// ErrNotInitialized is returned by every operation invoked before
	// Open or after Close.
	ErrNotInitialized = errors.New("store is not initialized")

	// ErrCollectionNotFound is returned when an operation addresses a
	// collection that was never created.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrCollectionExists is returned by CreateCollection when the name
	// is already registered.
	ErrCollectionExists = errors.New("collection already exists")

	// ErrDocumentNotFound is returned by Update when the target id does
	// not exist. Delete and FindByID report a missing id through their
	// boolean return instead.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrIndexingDisabled is returned by the index operations when the
	// store was configured with Indexing disabled.
	ErrIndexingDisabled = errors.New("indexing is disabled")
)
