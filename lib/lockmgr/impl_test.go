package lockmgr

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestWithLockRunsOp(t *testing.T) {
	mgr := NewLockManager()

	ran := false
	err := mgr.WithLock("key", func() error {
		ran = true
		return nil
	})

	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if !ran {
		t.Error("Expected op to run")
	}
}

func TestWithLockPropagatesError(t *testing.T) {
	mgr := NewLockManager()

	wantErr := errors.New("op failed")
	err := mgr.WithLock("key", func() error {
		return wantErr
	})

	if !errors.Is(err, wantErr) {
		t.Errorf("Expected the op error verbatim, got %v", err)
	}
}

func TestExclusiveExecutionPerKey(t *testing.T) {
	mgr := NewLockManager()

	var inside, maxInside, violations int32
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = mgr.WithLock("shared", func() error {
				n := atomic.AddInt32(&inside, 1)
				if n > 1 {
					atomic.AddInt32(&violations, 1)
				}
				if n > atomic.LoadInt32(&maxInside) {
					atomic.StoreInt32(&maxInside, n)
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
		}()
	}
	wg.Wait()

	if violations != 0 {
		t.Errorf("Expected strictly exclusive execution, got %d overlaps (max concurrency %d)",
			violations, maxInside)
	}
}

func TestNoLostUpdates(t *testing.T) {
	mgr := NewLockManager()

	// A non-atomic read-modify-write cycle per op: without serialization
	// this loses updates, with it the final count is exact.
	counter := 0
	var wg sync.WaitGroup
	const n = 100

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = mgr.WithLock("counter", func() error {
				v := counter
				time.Sleep(time.Microsecond)
				counter = v + 1
				return nil
			})
		}()
	}
	wg.Wait()

	if counter != n {
		t.Errorf("Expected exactly %d applied increments, got %d", n, counter)
	}
}

func TestFIFOOrder(t *testing.T) {
	mgr := NewLockManager()

	// Hold the key so all later submissions queue up behind the blocker
	release := make(chan struct{})
	blockerIn := make(chan struct{})
	go func() {
		_ = mgr.WithLock("key", func() error {
			close(blockerIn)
			<-release
			return nil
		})
	}()
	<-blockerIn

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup

	// Stagger the submissions so their queue positions are deterministic
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = mgr.WithLock("key", func() error {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				return nil
			})
		}(i)
		time.Sleep(20 * time.Millisecond)
	}

	close(release)
	wg.Wait()

	for i, got := range order {
		if got != i {
			t.Fatalf("Expected submission order %v to be preserved, got %v",
				[]int{0, 1, 2, 3, 4}, order)
		}
	}
}

func TestKeysDoNotBlockEachOther(t *testing.T) {
	mgr := NewLockManager()

	// An op on key a waits for an op on key b. This deadlocks if keys
	// share a queue and completes quickly if they are independent.
	unblock := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- mgr.WithLock("a", func() error {
			select {
			case <-unblock:
				return nil
			case <-time.After(2 * time.Second):
				return errors.New("timed out waiting for key b")
			}
		})
	}()

	// Give the op on a time to take its key
	time.Sleep(10 * time.Millisecond)

	if err := mgr.WithLock("b", func() error {
		close(unblock)
		return nil
	}); err != nil {
		t.Fatalf("Expected op on independent key to run, got %v", err)
	}

	if err := <-done; err != nil {
		t.Errorf("Expected keys to proceed independently, got %v", err)
	}
}

func TestPanicReleasesKey(t *testing.T) {
	mgr := NewLockManager()

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Error("Expected the panic to propagate to the submitter")
			}
		}()
		_ = mgr.WithLock("key", func() error {
			panic("op exploded")
		})
	}()

	// The key must be free again, not wedged by the panicked op
	done := make(chan struct{})
	go func() {
		_ = mgr.WithLock("key", func() error { return nil })
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected key to be released after a panic")
	}
}

func TestErrorDoesNotPoisonQueue(t *testing.T) {
	mgr := NewLockManager()

	_ = mgr.WithLock("key", func() error {
		return errors.New("first op failed")
	})

	err := mgr.WithLock("key", func() error { return nil })
	if err != nil {
		t.Errorf("Expected queued op to be unaffected by a prior failure, got %v", err)
	}
}

func TestInFlightCleanup(t *testing.T) {
	mgr := NewLockManager()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", i%3)
			_ = mgr.WithLock(key, func() error {
				time.Sleep(time.Millisecond)
				return nil
			})
		}(i)
	}
	wg.Wait()

	if n := mgr.InFlight(); n != 0 {
		t.Errorf("Expected all queue state to be reclaimed, got %d keys in flight", n)
	}
}
