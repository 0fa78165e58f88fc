package robot

import (
	"context"
	"errors"
	"time"

	"github.com/entwanne/root-robot/pkg/driver"
	"github.com/entwanne/root-robot/pkg/events"
)

// Discovery errors.
var (
	// ErrNoDevices is returned when a scan found no robots.
	ErrNoDevices = errors.New("no robots found")
)

// DefaultDiscoveryTimeout bounds a scan when the caller does not care.
const DefaultDiscoveryTimeout = 1 * time.Second

// Transport discovers advertising robots. Implementations live under
// pkg/transport; tests supply fakes.
type Transport interface {
	// Discover scans for up to timeout and returns the robots seen, in
	// arrival order. An empty result is not an error; transport faults
	// are reported as *driver.DiscoveryError.
	Discover(ctx context.Context, timeout time.Duration) ([]driver.Device, error)
}

// Discover scans the transport for advertising robots.
func Discover(ctx context.Context, t Transport, timeout time.Duration) ([]driver.Device, error) {
	if timeout <= 0 {
		timeout = DefaultDiscoveryTimeout
	}
	return t.Discover(ctx, timeout)
}

// First discovers robots and opens a session on the first one seen.
// It fails with ErrNoDevices when the scan comes up empty.
func First(ctx context.Context, t Transport, timeout time.Duration, opts Options) (*Robot, error) {
	devices, err := Discover(ctx, t, timeout)
	if err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		return nil, ErrNoDevices
	}
	return OpenWith(ctx, devices[0], opts)
}

// Run discovers the first robot, enables all event subsystems, registers the
// given callbacks and processes events until ctx is cancelled or the stream
// ends. The session is released on every exit path.
func Run(ctx context.Context, t Transport, timeout time.Duration, opts Options, callbacks map[driver.EventKind]events.Handler) error {
	r, err := First(ctx, t, timeout, opts)
	if err != nil {
		return err
	}
	defer r.Close()

	if err := r.Events.EnableAll(ctx); err != nil {
		return err
	}
	r.Events.SetCallbacks(callbacks)

	return r.Events.Process(ctx, true)
}
