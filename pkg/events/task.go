package events

import (
	"context"
)

// Process consumes the selected iteration mode to exhaustion, invoking
// registered callbacks as a side effect and discarding the events. With
// follow it runs until ctx is cancelled or the session closes; without
// follow it returns once the currently buffered events are processed.
// The returned error is the stream fault, if any; consumer cancellation and
// clean termination return nil.
func (e *Engine) Process(ctx context.Context, follow bool) error {
	var s *Stream
	if follow {
		s = e.Listen(ctx)
	} else {
		s = e.Drain(ctx)
	}

	for range s.C {
	}
	return s.Err()
}

// Task is a handle to a background processing loop started by ProcessAsync.
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// ProcessAsync runs Process in the background and returns immediately,
// allowing the caller to issue commands while events are processed.
// Stopping the task stops further callback dispatch but leaves the session
// open.
func (e *Engine) ProcessAsync(ctx context.Context, follow bool) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(t.done)
		t.err = e.Process(ctx, follow)
	}()

	return t
}

// Stop cancels the background loop. It does not close the session.
func (t *Task) Stop() {
	t.cancel()
}

// Done is closed when the background loop has finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the loop finishes and returns its terminal error.
func (t *Task) Wait() error {
	<-t.done
	return t.err
}

// Err returns the loop's terminal error. Valid once Done is closed.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}
