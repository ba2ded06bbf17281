package engine

import "sync"

// queue serializes units of work in strict arrival order. Each unit waits
// on its predecessor's completion signal, so at most one unit runs at any
// instant, units settle in enqueue order, and a failing unit cannot stall
// promotion (its signal closes in a defer).
type queue struct {
	mu   sync.Mutex
	tail chan struct{}
}

// enqueue schedules work to run after everything enqueued before it.
// It never blocks the caller.
func (q *queue) enqueue(work func()) {
	done := make(chan struct{})

	q.mu.Lock()
	prev := q.tail
	q.tail = done
	q.mu.Unlock()

	go func() {
		defer close(done)
		if prev != nil {
			<-prev
		}
		work()
	}()
}
