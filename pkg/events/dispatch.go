package events

import (
	"fmt"

	"github.com/entwanne/root-robot/pkg/driver"
	"github.com/entwanne/root-robot/pkg/log"
)

// dispatch hands the event to the handler registered for its kind, as
// fire-and-forget work. Invocations for the same kind are chained so they
// run in emission order; different kinds run independently. Handler errors
// and panics are reported, never propagated.
func (e *Engine) dispatch(ev driver.Event) {
	kind := ev.Kind()

	e.mu.Lock()
	handler, ok := e.handlers[kind]
	if !ok {
		e.mu.Unlock()
		return
	}
	prev := e.lastDispatch[kind]
	done := make(chan struct{})
	e.lastDispatch[kind] = done
	logger, sessionID := e.logger, e.sessionID
	e.mu.Unlock()

	go func() {
		defer close(done)

		if prev != nil {
			<-prev
		}

		if err := invoke(handler, ev); err != nil {
			logger.Log(log.NewErrorEvent(sessionID, "callback "+kind.String(), err))
		}
	}()
}

// invoke runs the handler, converting a panic into an error.
func invoke(handler Handler, ev driver.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return handler(ev)
}
