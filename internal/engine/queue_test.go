package engine

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestQueueRunsInArrivalOrder(t *testing.T) {
	var q queue
	var mu sync.Mutex
	var got []int
	var wg sync.WaitGroup

	for i := range 100 {
		wg.Add(1)
		q.enqueue(func() {
			defer wg.Done()
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}
	wg.Wait()

	for i, v := range got {
		if v != i {
			t.Fatalf("position %d ran unit %d", i, v)
		}
	}
}

func TestQueueNeverOverlapsUnits(t *testing.T) {
	var q queue
	var active atomic.Int32
	var wg sync.WaitGroup

	for range 50 {
		wg.Add(1)
		q.enqueue(func() {
			defer wg.Done()
			if active.Add(1) != 1 {
				t.Error("two units active at once")
			}
			time.Sleep(100 * time.Microsecond)
			active.Add(-1)
		})
	}
	wg.Wait()
}

func TestQueueDoesNotBlockEnqueuer(t *testing.T) {
	var q queue
	release := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(2)
	q.enqueue(func() {
		defer wg.Done()
		<-release
	})

	// The first unit is parked; enqueueing more must return immediately.
	done := make(chan struct{})
	go func() {
		q.enqueue(func() { defer wg.Done() })
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("enqueue blocked behind a parked unit")
	}

	close(release)
	wg.Wait()
}
