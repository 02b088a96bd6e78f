// Package cmd implements the command-line interface for the BigBase embedded
// document database. It provides a hierarchical command structure for working
// with collections, documents, indexes and benchmarks.
//
// The package is organized into several subpackages:
//
//   - db: Commands for document store operations (create, insert, query, etc.)
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See bigbase -help for a list of all commands.
package cmd
