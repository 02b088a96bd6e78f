package internal

// Entry is a single cached value together with the bookkeeping the cache
// keeps per key: the accounted size, the expiry deadline and the intrusive
// links of the LRU list. Entries are owned by the cache and never escape
// its lock.
type Entry struct {
	// Key is the cache key the entry is stored under
	Key string
	// Value is the cached value
	Value any
	// Size is the accounted memory cost in bytes
	Size int
	// ExpireAt is the expiry deadline in unix nanoseconds, zero means never
	ExpireAt int64

	prev, next *Entry
}

// List is an intrusive doubly linked list over cache entries, ordered from
// least recently used (front) to most recently used (back). All operations
// are O(1). The zero value is an empty list ready for use.
//
// Thread-safety: none, the cache serializes access with its own mutex.
type List struct {
	front  *Entry
	back   *Entry
	length int
}

// Len returns the number of linked entries.
func (l *List) Len() int {
	return l.length
}

// Front returns the least recently used entry, or nil if the list is empty.
func (l *List) Front() *Entry {
	return l.front
}

// PushBack links e as the most recently used entry. e must not currently
// be linked.
func (l *List) PushBack(e *Entry) {
	e.prev = l.back
	e.next = nil
	if l.back != nil {
		l.back.next = e
	} else {
		l.front = e
	}
	l.back = e
	l.length++
}

// Remove unlinks e. e must currently be linked into this list.
func (l *List) Remove(e *Entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		l.front = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		l.back = e.prev
	}
	e.prev = nil
	e.next = nil
	l.length--
}

// MoveToBack marks e as most recently used.
func (l *List) MoveToBack(e *Entry) {
	if l.back == e {
		return
	}
	l.Remove(e)
	l.PushBack(e)
}
