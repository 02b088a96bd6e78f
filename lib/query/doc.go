// Package query implements the query engine of the database: pure
// functions that filter, sort, paginate and project slices of documents.
// The engine owns no state and knows nothing about collections, caching or
// storage, it depends solely on the document value model.
//
// Filters are maps from field names to conditions:
//
//	query.Filter{"status": "active"}                          // literal equality
//	query.Filter{"age": query.Filter{"$gte": 18}}             // operator map
//	query.Filter{"$or": []query.Filter{{"a": 1}, {"b": 2}}}   // combinator
//
// Supported operators:
//
//	$eq, $ne            equality / inequality (deep, numeric-unified)
//	$gt, $gte, $lt, $lte  range comparison over comparable kinds
//	$in, $nin           membership in a supplied array
//	$regex              Go regexp match over string fields
//	$exists             field presence check
//	$and, $or, $not     logical combinators over sub-filters
//
// A map-valued condition is always an operator map, so equality against a
// literal object value cannot be expressed directly; use field clauses on
// the nested document instead. Unknown operators fail with a typed
// *UnknownOperatorError instead of silently matching nothing, and
// Validate surfaces such errors before any document is inspected.
//
// The full query pipeline applies in a fixed order: filter first, then
// sort, then offset/limit pagination, then projection.
package query
