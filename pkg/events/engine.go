package events

import (
	"context"
	"errors"
	"sync"

	"github.com/entwanne/root-robot/pkg/driver"
	"github.com/entwanne/root-robot/pkg/log"
)

// Engine errors.
var (
	// ErrEngineClosed is returned when consuming after the underlying
	// stream terminated.
	ErrEngineClosed = errors.New("event engine closed")
)

// Handler processes one dispatched event. A returned error is reported to
// the engine's logger and does not affect event delivery.
type Handler func(event driver.Event) error

// Engine multiplexes the driver's event stream to registered callbacks and
// iterating consumers. Create one per session with New; the engine ends when
// the driver's event channel closes.
type Engine struct {
	drv driver.Driver

	mu    sync.Mutex
	queue []driver.Event
	wake  chan struct{} // closed and replaced whenever queue or done changes
	done  bool          // pump finished, queue is final
	err   error         // terminal stream fault, nil on clean close

	handlers     map[driver.EventKind]Handler
	lastDispatch map[driver.EventKind]chan struct{}

	logger    log.Logger
	sessionID string

	pumpDone chan struct{} // closed when pump returns
}

// New creates an Engine consuming the driver's event source. The pump starts
// immediately; events accumulate until a consumer drains them.
func New(drv driver.Driver) *Engine {
	e := &Engine{
		drv:          drv,
		wake:         make(chan struct{}),
		handlers:     make(map[driver.EventKind]Handler),
		lastDispatch: make(map[driver.EventKind]chan struct{}),
		logger:       log.NoopLogger{},
		pumpDone:     make(chan struct{}),
	}

	go e.pump()

	return e
}

// SetLogger sets the protocol logger and session ID used for callback
// failure reports and stream state changes.
func (e *Engine) SetLogger(logger log.Logger, sessionID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if logger == nil {
		logger = log.NoopLogger{}
	}
	e.logger = logger
	e.sessionID = sessionID
}

// SetCallback registers or replaces the handler for one event kind.
// A nil handler removes the registration. Safe to call while a processing
// loop is active; the next dispatch cycle observes the update.
func (e *Engine) SetCallback(kind driver.EventKind, handler Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if handler == nil {
		delete(e.handlers, kind)
		return
	}
	e.handlers[kind] = handler
}

// SetCallbacks registers or replaces handlers for several kinds at once.
func (e *Engine) SetCallbacks(handlers map[driver.EventKind]Handler) {
	for kind, handler := range handlers {
		e.SetCallback(kind, handler)
	}
}

// Enable enables event emission for the given subsystems.
func (e *Engine) Enable(ctx context.Context, devices driver.DeviceSet) error {
	return e.drv.EnableEvents(ctx, devices)
}

// EnableAll enables event emission for every subsystem.
func (e *Engine) EnableAll(ctx context.Context) error {
	return e.Enable(ctx, driver.AllDevices)
}

// Disable disables event emission for the given subsystems.
// Already-buffered events are unaffected.
func (e *Engine) Disable(ctx context.Context, devices driver.DeviceSet) error {
	return e.drv.DisableEvents(ctx, devices)
}

// DisableAll disables event emission for every subsystem.
func (e *Engine) DisableAll(ctx context.Context) error {
	return e.Disable(ctx, driver.AllDevices)
}

// Enabled returns the subsystems currently emitting events.
func (e *Engine) Enabled(ctx context.Context) (driver.DeviceSet, error) {
	return e.drv.EnabledEvents(ctx)
}

// Wait blocks until the driver's event source has been fully consumed and the
// callbacks in flight at the time of the call have returned. It only unblocks
// after the driver closes its event channel, so call it after closing the
// session.
func (e *Engine) Wait() {
	<-e.pumpDone

	e.mu.Lock()
	pending := make([]chan struct{}, 0, len(e.lastDispatch))
	for _, done := range e.lastDispatch {
		pending = append(pending, done)
	}
	e.mu.Unlock()

	for _, done := range pending {
		<-done
	}
}

// Err reports the stream fault that terminated the engine, or nil while the
// stream is live or after a clean session close.
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// pump is the sole consumer of the driver's raw event source. It preserves
// emission order and never blocks on consumers.
func (e *Engine) pump() {
	defer close(e.pumpDone)

	for ev := range e.drv.Events() {
		e.mu.Lock()
		e.queue = append(e.queue, ev)
		e.broadcastLocked()
		logger, sessionID := e.logger, e.sessionID
		e.mu.Unlock()

		logger.Log(log.NewRobotEvent(sessionID, ev.Kind().String()))
	}

	e.mu.Lock()
	e.done = true
	if err := e.drv.Err(); err != nil {
		e.err = &driver.StreamError{Err: err}
	}
	e.broadcastLocked()
	logger, sessionID, err := e.logger, e.sessionID, e.err
	e.mu.Unlock()

	reason := ""
	if err != nil {
		reason = err.Error()
	}
	logger.Log(log.NewStateEvent(sessionID, "stream", "LIVE", "CLOSED", reason))
}

// broadcastLocked wakes all waiting consumers. Callers must hold e.mu.
func (e *Engine) broadcastLocked() {
	close(e.wake)
	e.wake = make(chan struct{})
}

// next pops the head of the queue. With follow it blocks for new events
// until ctx is cancelled or the stream terminates; without follow it returns
// errExhausted once the queue is empty.
func (e *Engine) next(ctx context.Context, follow bool) (driver.Event, error) {
	for {
		e.mu.Lock()
		if len(e.queue) > 0 {
			ev := e.queue[0]
			e.queue = e.queue[1:]
			e.mu.Unlock()
			return ev, nil
		}
		if e.done {
			err := e.err
			e.mu.Unlock()
			if err != nil {
				return nil, err
			}
			return nil, ErrEngineClosed
		}
		if !follow {
			e.mu.Unlock()
			return nil, errExhausted
		}
		wake := e.wake
		e.mu.Unlock()

		select {
		case <-wake:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// errExhausted terminates drain mode when the buffer empties.
var errExhausted = errors.New("buffer exhausted")

// buffered returns the number of currently queued events.
func (e *Engine) buffered() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}
