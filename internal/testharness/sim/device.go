package sim

import (
	"context"
	"sync"

	"github.com/entwanne/root-robot/pkg/driver"
)

// Device is a discoverable simulated robot. Each successful Open returns a
// fresh Robot; the claim is released when that Robot is closed, enforcing
// the one-connection-per-device rule.
type Device struct {
	id   string
	name string

	// OpenErr, when non-nil, makes Open fail with a connection error.
	OpenErr error

	// Configure, when non-nil, customizes each Robot before it is
	// returned from Open.
	Configure func(*Robot)

	mu      sync.Mutex
	claimed bool
	current *Robot
}

// NewDevice creates a discoverable simulated robot.
func NewDevice(id, name string) *Device {
	return &Device{id: id, name: name}
}

// ID implements driver.Device.
func (d *Device) ID() string { return d.id }

// Name implements driver.Device.
func (d *Device) Name() string { return d.name }

// Open implements driver.Device.
func (d *Device) Open(ctx context.Context) (driver.Driver, error) {
	if err := ctx.Err(); err != nil {
		return nil, &driver.ConnectionError{Device: d.id, Err: err}
	}
	if d.OpenErr != nil {
		return nil, &driver.ConnectionError{Device: d.id, Err: d.OpenErr}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.claimed {
		return nil, &driver.ConnectionError{Device: d.id, Err: driver.ErrBusy}
	}

	r := New()
	r.name = d.name
	if d.Configure != nil {
		d.Configure(r)
	}
	r.released = func() {
		d.mu.Lock()
		d.claimed = false
		d.current = nil
		d.mu.Unlock()
	}

	d.claimed = true
	d.current = r
	return r, nil
}

// Current returns the Robot from the latest open, or nil when unclaimed.
func (d *Device) Current() *Robot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}
