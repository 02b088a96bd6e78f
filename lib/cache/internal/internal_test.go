package internal

import (
	"testing"
)

func TestListOrder(t *testing.T) {
	var l List

	a := &Entry{Key: "a"}
	b := &Entry{Key: "b"}
	c := &Entry{Key: "c"}

	l.PushBack(a)
	l.PushBack(b)
	l.PushBack(c)

	if l.Len() != 3 {
		t.Fatalf("Expected 3 entries, got %d", l.Len())
	}
	if l.Front() != a {
		t.Errorf("Expected a at the front, got %v", l.Front().Key)
	}

	l.MoveToBack(a)
	if l.Front() != b {
		t.Errorf("Expected b at the front after promoting a, got %v", l.Front().Key)
	}

	l.Remove(b)
	if l.Front() != c {
		t.Errorf("Expected c at the front after removing b, got %v", l.Front().Key)
	}
	if l.Len() != 2 {
		t.Errorf("Expected 2 entries, got %d", l.Len())
	}

	l.Remove(c)
	l.Remove(a)
	if l.Len() != 0 || l.Front() != nil {
		t.Errorf("Expected empty list, got len=%d front=%v", l.Len(), l.Front())
	}

	// Reuse after draining must work, entries are fully unlinked
	l.PushBack(a)
	if l.Front() != a || l.Len() != 1 {
		t.Error("Expected list to be reusable after draining")
	}
}

func TestListMoveToBackOnTail(t *testing.T) {
	var l List
	a := &Entry{Key: "a"}
	b := &Entry{Key: "b"}
	l.PushBack(a)
	l.PushBack(b)

	l.MoveToBack(b)

	if l.Front() != a || l.Len() != 2 {
		t.Error("Expected promoting the tail to be a no-op")
	}
}

func TestExpiryHeapOrdersByDeadline(t *testing.T) {
	h := NewExpiryHeap()

	h.Set("late", 300)
	h.Set("early", 100)
	h.Set("mid", 200)

	if key, deadline, ok := h.Peek(); !ok || key != "early" || deadline != 100 {
		t.Errorf("Expected early/100 at the top, got %s/%d (ok=%v)", key, deadline, ok)
	}

	var order []string
	for {
		key, _, ok := h.Pop()
		if !ok {
			break
		}
		order = append(order, key)
	}
	want := []string{"early", "mid", "late"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("Expected pop order %v, got %v", want, order)
		}
	}
}

func TestExpiryHeapUpdatesDeadline(t *testing.T) {
	h := NewExpiryHeap()

	h.Set("a", 100)
	h.Set("b", 200)

	// Pushing a's deadline past b must reorder the heap
	h.Set("a", 300)

	if key, _, _ := h.Peek(); key != "b" {
		t.Errorf("Expected b at the top after rescheduling a, got %s", key)
	}
	if h.Len() != 2 {
		t.Errorf("Expected update not to grow the heap, got %d", h.Len())
	}
}

func TestExpiryHeapRemove(t *testing.T) {
	h := NewExpiryHeap()

	h.Set("a", 100)
	h.Set("b", 200)

	if !h.Remove("a") {
		t.Error("Expected removal of tracked key to report true")
	}
	if h.Remove("a") {
		t.Error("Expected removal of untracked key to report false")
	}
	if key, _, _ := h.Peek(); key != "b" {
		t.Errorf("Expected b at the top, got %s", key)
	}
}

func TestExpiryHeapEmpty(t *testing.T) {
	h := NewExpiryHeap()

	if _, _, ok := h.Peek(); ok {
		t.Error("Expected peek on empty heap to report false")
	}
	if _, _, ok := h.Pop(); ok {
		t.Error("Expected pop on empty heap to report false")
	}
	if h.Len() != 0 {
		t.Errorf("Expected empty heap, got %d", h.Len())
	}
}
