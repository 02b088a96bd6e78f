// Package testing provides standardised tests and benchmarks for storage
// backends that satisfy the backend.IBackend interface.
//
// The package contains:
//   - testing: A conformance suite validating the IBackend contract
//     (upsert semantics, idempotent deletes, document isolation)
//   - benchmark: Performance tests for the common backend operations
//
// Example usage:
//
//	// Creating a factory function for your implementation
//	factory := func() backend.IBackend {
//		return NewMyBackend()
//	}
//
//	// Running the standard test suite
//	backendtesting.RunBackendTests(t, "MyBackend", factory)
//
//	// Running performance benchmarks
//	backendtesting.RunBackendBenchmarks(b, "MyBackend", factory)
package testing
