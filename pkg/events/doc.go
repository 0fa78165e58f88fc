// Package events multiplexes the robot's event stream to callbacks and
// iterating consumers.
//
// The Engine owns the sole consumer of the driver's raw event source: a pump
// goroutine appends every incoming event to an internal ordered queue. Two
// consumption modes read from that queue:
//
//   - Listen follows the stream indefinitely, blocking for new events until
//     the consumer's context is cancelled or the session closes.
//   - Drain yields only the events already queued at the moment of the call
//     and then ends without blocking, even if more events arrive meanwhile.
//
// Both modes deliver events in emission order. As each event is consumed it
// is also dispatched to the callback registered for its kind, as independent
// fire-and-forget work: a slow or failing callback never stalls delivery of
// subsequent events. Callbacks for the same kind run in order relative to
// each other; no ordering is guaranteed across kinds once dispatched.
//
// Callback registration is live: SetCallback may be called while a
// processing loop runs and takes effect from the next dispatched event.
// Callback errors and panics are reported to the configured logger and never
// propagate to the pump or to other consumers.
package events
