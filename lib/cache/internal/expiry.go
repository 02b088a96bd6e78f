package internal

import (
	"container/heap"
)

// ExpiryHeap is a min-heap of cache keys ordered by expiry deadline,
// combined with a map for O(1) key lookup. This allows the cache to find
// the next entry due to expire in O(1) and to reschedule or drop a key in
// O(log n) when it is overwritten or deleted.
//
// Thread-safety: none, the cache serializes access with its own mutex.
type ExpiryHeap struct {
	heap *expiryHeapImpl
}

// NewExpiryHeap creates an empty expiry index.
func NewExpiryHeap() *ExpiryHeap {
	h := &expiryHeapImpl{
		items: make([]*expiryItem, 0),
		m:     make(map[string]*expiryItem),
	}
	heap.Init(h)
	return &ExpiryHeap{heap: h}
}

// Set tracks key with the given deadline (unix nanoseconds). If the key is
// already tracked its deadline is updated in place.
func (eh *ExpiryHeap) Set(key string, deadline int64) {
	if item, exists := eh.heap.m[key]; exists {
		item.deadline = deadline
		heap.Fix(eh.heap, item.index)
		return
	}
	heap.Push(eh.heap, &expiryItem{key: key, deadline: deadline})
}

// Remove stops tracking key. It returns false if the key was not tracked.
func (eh *ExpiryHeap) Remove(key string) bool {
	item, exists := eh.heap.m[key]
	if !exists {
		return false
	}
	heap.Remove(eh.heap, item.index)
	return true
}

// Peek returns the key with the earliest deadline without removing it.
func (eh *ExpiryHeap) Peek() (key string, deadline int64, ok bool) {
	if eh.heap.Len() == 0 {
		return "", 0, false
	}
	item := eh.heap.items[0]
	return item.key, item.deadline, true
}

// Pop removes and returns the key with the earliest deadline.
func (eh *ExpiryHeap) Pop() (key string, deadline int64, ok bool) {
	if eh.heap.Len() == 0 {
		return "", 0, false
	}
	item := heap.Pop(eh.heap).(*expiryItem)
	return item.key, item.deadline, true
}

// Len returns the number of tracked keys.
func (eh *ExpiryHeap) Len() int {
	return eh.heap.Len()
}

// --------------------------------------------------------------------------
// heap.Interface implementation
// --------------------------------------------------------------------------

// expiryItem is an element of the heap with its key, deadline and current
// position in the backing slice.
type expiryItem struct {
	key      string
	deadline int64
	index    int
}

// expiryHeapImpl implements heap.Interface over a slice of items plus a
// key lookup map kept in sync on every mutation.
type expiryHeapImpl struct {
	items []*expiryItem
	m     map[string]*expiryItem
}

func (h *expiryHeapImpl) Len() int {
	return len(h.items)
}

func (h *expiryHeapImpl) Less(i, j int) bool {
	return h.items[i].deadline < h.items[j].deadline
}

func (h *expiryHeapImpl) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.items[i].index = i
	h.items[j].index = j
}

func (h *expiryHeapImpl) Push(x any) {
	item := x.(*expiryItem)
	item.index = len(h.items)
	h.items = append(h.items, item)
	h.m[item.key] = item
}

func (h *expiryHeapImpl) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	h.items = old[:n-1]
	delete(h.m, item.key)
	return item
}
