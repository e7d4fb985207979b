package keylock_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mickamy/gotrail/internal/keylock"
)

func TestLocker_SerializesSameKey(t *testing.T) {
	t.Parallel()

	l := keylock.New[string]()
	var active, peak int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock("a")
			defer unlock()
			n := atomic.AddInt32(&active, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&active, -1)
		}()
	}
	wg.Wait()

	if peak != 1 {
		t.Fatalf("peak concurrent holders = %d, want 1", peak)
	}
	if got := l.Len(); got != 0 {
		t.Fatalf("Len() = %d, want 0 after all unlocks", got)
	}
}

func TestLocker_IndependentKeys(t *testing.T) {
	t.Parallel()

	l := keylock.New[string]()
	unlockA := l.Lock("a")
	done := make(chan struct{})
	go func() {
		unlock := l.Lock("b")
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key blocked")
	}
	unlockA()
	unlockA()
	if got := l.Len(); got != 0 {
		t.Fatalf("Len() = %d, want 0", got)
	}
}
