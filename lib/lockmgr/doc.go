// Package lockmgr serializes mutating operations per resource key. It is
// the concurrency backbone of the store: every mutation of a collection is
// submitted through the lock manager, which guarantees that operations on
// the same key execute strictly one at a time, in submission order, while
// operations on distinct keys run fully in parallel.
//
// Core Functionality:
//   - Exclusive execution: at most one operation per key runs at any time
//   - FIFO fairness: operations run in the order they were submitted
//   - Isolation between keys: queues of different keys never interact
//   - Self-cleaning: per-key state is reclaimed once a queue drains
//
// Implementation Approach:
//
//	The manager keeps one map entry per busy key holding the most
//	recently submitted operation, the queue tail. Submitting work is a
//	single atomic map update (xsync.MapOf.Compute): the new operation
//	installs itself as the tail and learns its predecessor in the same
//	step. It then blocks on the predecessor's done channel, which the
//	predecessor closes when it finishes.
//
//	The chain of done channels forms the queue. There is no central
//	dispatcher goroutine and no broadcast: each finishing operation
//	wakes exactly one successor, so a burst of submissions on one key
//	costs one channel and one map update each.
//
//	Release happens in a deferred function, so a panicking operation
//	still wakes its successor and the queue behind it keeps draining.
//	Errors returned by an operation are passed through to its submitter
//	only and have no effect on queued operations.
//
// Thread Safety:
//
//	All methods are safe for concurrent use by any number of goroutines.
//	The FIFO guarantee is per key: if two goroutines race to submit on
//	the same key, whichever Compute lands first runs first.
//
// Usage Example:
//
//	mgr := lockmgr.NewLockManager()
//
//	// Mutations on the same collection serialize, different
//	// collections proceed independently.
//	err := mgr.WithLock("mutate:users", func() error {
//	    return applyMutation()
//	})
//
// Performance Impact:
//
//	An uncontended WithLock costs one map update, one deferred map
//	update and one channel close, no goroutine is ever parked. Under
//	contention each waiter parks on a single channel receive until its
//	direct predecessor completes.
package lockmgr
