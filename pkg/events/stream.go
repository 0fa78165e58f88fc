package events

import (
	"context"
	"sync"

	"github.com/entwanne/root-robot/pkg/driver"
)

// Stream is one consumption pass over the engine's event queue. Events are
// received from C in emission order; the channel is closed when the stream
// ends. Streams are not restartable.
type Stream struct {
	// C carries the consumed events.
	C <-chan driver.Event

	mu  sync.Mutex
	err error
}

// Err reports why the stream ended. It is nil after a drained buffer, a
// cancelled consumer or a clean session close, and a *driver.StreamError
// after a transport fault. Valid once C is closed.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Stream) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Listen starts continuous iteration: the stream blocks for new events
// indefinitely and ends only when ctx is cancelled or the session closes.
// Cancelling the consumer does not affect the session or other callbacks.
func (e *Engine) Listen(ctx context.Context) *Stream {
	return e.stream(ctx, true)
}

// Drain starts drain iteration: the stream yields only the events queued at
// the moment of the call and then ends without blocking, even if more events
// arrive while draining.
func (e *Engine) Drain(ctx context.Context) *Stream {
	return e.stream(ctx, false)
}

func (e *Engine) stream(ctx context.Context, follow bool) *Stream {
	ch := make(chan driver.Event)
	s := &Stream{C: ch}

	// Drain mode is bounded by the queue length observed now.
	remaining := -1
	if !follow {
		remaining = e.buffered()
	}

	// The goroutine's lifetime belongs to the consumer: it ends when ctx
	// is cancelled, the buffer drains or the session closes, and signals
	// the end by closing ch.
	go func() {
		defer close(ch)

		for remaining != 0 {
			ev, err := e.next(ctx, follow)
			switch {
			case err == nil:
			case err == errExhausted || err == ErrEngineClosed || err == context.Canceled || err == context.DeadlineExceeded:
				return
			default:
				s.setErr(err)
				return
			}

			e.dispatch(ev)

			select {
			case ch <- ev:
			case <-ctx.Done():
				return
			}

			if remaining > 0 {
				remaining--
			}
		}
	}()

	return s
}
