package log

// Logger receives the protocol events recorded during a session.
// Implementations must be safe for concurrent use; a Log call that blocks
// stalls the session goroutine that emitted the event.
type Logger interface {
	Log(event Event)
}

// NoopLogger drops every event. The zero value is ready to use.
type NoopLogger struct{}

// Log implements Logger.
func (NoopLogger) Log(Event) {}

var _ Logger = NoopLogger{}
