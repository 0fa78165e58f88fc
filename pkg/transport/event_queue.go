package transport

import (
	"sync"

	"github.com/entwanne/root-robot/pkg/driver"
)

// eventQueue decouples the read pump from event consumers: pushes never
// block, order is preserved, and out is closed once the queue is drained
// after close.
type eventQueue struct {
	mu     sync.Mutex
	buf    []driver.Event
	signal chan struct{}
	closed bool

	out chan driver.Event
}

func newEventQueue() *eventQueue {
	q := &eventQueue{
		signal: make(chan struct{}, 1),
		out:    make(chan driver.Event),
	}
	go q.forward()
	return q
}

// push appends an event. Safe to call from the read pump at any rate.
func (q *eventQueue) push(ev driver.Event) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.buf = append(q.buf, ev)
	q.mu.Unlock()
	q.wake()
}

// close stops the queue; buffered events are still delivered before out is
// closed.
func (q *eventQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.wake()
}

func (q *eventQueue) wake() {
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// forward moves events from the buffer to the out channel in order.
func (q *eventQueue) forward() {
	for {
		q.mu.Lock()
		if len(q.buf) == 0 {
			if q.closed {
				q.mu.Unlock()
				close(q.out)
				return
			}
			q.mu.Unlock()
			<-q.signal
			continue
		}
		ev := q.buf[0]
		q.buf = q.buf[1:]
		q.mu.Unlock()

		q.out <- ev
	}
}
