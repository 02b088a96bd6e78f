package lockmgr

// ILockManager serializes operations per resource key. Operations submitted
// under the same key run strictly one at a time in submission order, while
// operations under different keys proceed independently of each other.
type ILockManager interface {
	// WithLock runs op exclusively with respect to all other operations
	// submitted under the same key. The call blocks until every earlier
	// operation on the key has finished, then runs op on the calling
	// goroutine and returns its error verbatim.
	//
	// The key is released even if op panics, so a failing operation can
	// never wedge the queue behind it.
	WithLock(key string, op func() error) error

	// InFlight returns the number of keys that currently have a running
	// or queued operation. A drained manager reports zero since queue
	// bookkeeping is reclaimed as soon as a key falls idle.
	InFlight() int
}
