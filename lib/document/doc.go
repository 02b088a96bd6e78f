// Package document defines the value model of the database: the Document
// map type, the Kind taxonomy of field values, deep copying and merging,
// comparison semantics shared by the query engine and the indexes, and
// optional schema validation.
//
// The package deliberately has no dependencies on the rest of the database.
// Everything above it (query evaluation, caching, storage, the store
// itself) builds on the primitives defined here.
//
// Key Components:
//
//   - Document: a map[string]any holding dynamically typed fields
//   - Kind / KindOf: classification of field values, stable across JSON
//     round trips (all numbers are KindNumber)
//   - Clone / Merged: deep copy and shallow field-wise merge
//   - Compare / Order / Equals: comparison semantics (numeric unification,
//     nil-first total order for sorting)
//   - Schema / Rule: declarative per-field validation with typed
//     *SchemaError results
//   - NewID / Timestamp: kernel-assigned identifiers and timestamps
package document
