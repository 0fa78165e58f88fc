package log

// MultiLogger fans each event out to every wrapped logger, in order.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger wraps the given loggers. A typical pairing is a SlogAdapter
// for the console next to a FileLogger for later replay.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	return &MultiLogger{loggers: loggers}
}

// Log implements Logger.
func (m *MultiLogger) Log(event Event) {
	for _, l := range m.loggers {
		l.Log(event)
	}
}

var _ Logger = (*MultiLogger)(nil)
