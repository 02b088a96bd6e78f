package lockmgr

import (
	"github.com/puzpuzpuz/xsync/v3"
)

// waiter marks one queued operation. Its done channel is closed when the
// operation has finished (or panicked), releasing the next waiter in line.
type waiter struct {
	done chan struct{}
}

// lockMgrImpl implements ILockManager with one implicit FIFO queue per key.
//
// The map holds, for every busy key, the waiter of the most recently
// submitted operation (the queue tail). A new operation atomically swaps
// itself in as the tail and then blocks on the previous tail's done
// channel. The chain of done channels is the queue: each waiter wakes
// exactly its direct successor, so operations run in submission order with
// no goroutine ever herded awake spuriously.
type lockMgrImpl struct {
	tails *xsync.MapOf[string, *waiter]
}

// NewLockManager creates a lock manager with no queued operations.
func NewLockManager() ILockManager {
	return &lockMgrImpl{
		tails: xsync.NewMapOf[string, *waiter](),
	}
}

func (m *lockMgrImpl) WithLock(key string, op func() error) error {
	me := &waiter{done: make(chan struct{})}

	// Atomically enqueue: swap ourselves in as the tail and remember our
	// predecessor. Compute linearizes concurrent submissions on the same
	// key, which is what makes the queue order well-defined.
	var prev *waiter
	m.tails.Compute(key, func(tail *waiter, loaded bool) (*waiter, bool) {
		if loaded {
			prev = tail
		}
		return me, false
	})

	// Wait for the predecessor to finish. Keys without in-flight work
	// have no predecessor and start immediately.
	if prev != nil {
		<-prev.done
	}

	defer func() {
		// Wake the successor first, then retire the tail entry if no
		// successor ever arrived. A successor that enqueues between
		// these two steps finds a closed channel and proceeds, so the
		// ordering here is safe either way.
		close(me.done)
		m.tails.Compute(key, func(tail *waiter, loaded bool) (*waiter, bool) {
			if loaded && tail == me {
				return nil, true
			}
			return tail, false
		})
	}()

	return op()
}

func (m *lockMgrImpl) InFlight() int {
	return m.tails.Size()
}
