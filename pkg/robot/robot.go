package robot

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/entwanne/root-robot/pkg/driver"
	"github.com/entwanne/root-robot/pkg/events"
	"github.com/entwanne/root-robot/pkg/log"
)

// Options configures an opened session.
type Options struct {
	// Logger receives protocol events for this session. Nil disables
	// logging.
	Logger log.Logger
}

// Robot is one live, exclusive session with a physical robot.
type Robot struct {
	drv       driver.Driver
	device    driver.Device
	sessionID string
	logger    log.Logger

	closeOnce sync.Once
	closeErr  error

	// Events is the session's event engine.
	Events *events.Engine

	// Motor controls the two wheel motors.
	Motor *Motor

	// Marker controls the marker half of the tool actuator.
	Marker *Marker

	// Eraser controls the eraser half of the tool actuator.
	Eraser *Eraser

	// LED controls the light ring.
	LED *LED

	// Sound plays notes and speech.
	Sound *Sound

	// Color reads the color sensors.
	Color *Color
}

// Open establishes the exclusive connection to a discovered device and
// returns the live session. It fails with a *driver.ConnectionError if the
// device is unreachable or already claimed; no sub-component is constructed
// on failure.
func Open(ctx context.Context, dev driver.Device) (*Robot, error) {
	return OpenWith(ctx, dev, Options{})
}

// OpenWith is Open with explicit options.
func OpenWith(ctx context.Context, dev driver.Device, opts Options) (*Robot, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.NoopLogger{}
	}

	drv, err := dev.Open(ctx)
	if err != nil {
		return nil, err
	}

	r := &Robot{
		drv:       drv,
		device:    dev,
		sessionID: uuid.NewString(),
		logger:    logger,
	}
	r.Events = events.New(drv)
	r.Events.SetLogger(logger, r.sessionID)
	r.Motor = &Motor{drv: drv}
	r.Marker = &Marker{drv: drv}
	r.Eraser = &Eraser{drv: drv}
	r.LED = &LED{drv: drv}
	r.Sound = &Sound{drv: drv}
	r.Color = &Color{drv: drv, calibration: DefaultCalibration()}

	logger.Log(log.NewStateEvent(r.sessionID, "session", "CLOSED", "OPEN", "device "+dev.ID()))
	return r, nil
}

// SessionID returns the unique identifier of this session, used to correlate
// protocol log events.
func (r *Robot) SessionID() string {
	return r.sessionID
}

// Device returns the device reference this session was opened from.
func (r *Robot) Device() driver.Device {
	return r.device
}

// Name returns the robot's user-visible name.
func (r *Robot) Name(ctx context.Context) (string, error) {
	return r.drv.Name(ctx)
}

// SetName sets the robot's user-visible name.
func (r *Robot) SetName(ctx context.Context, name string) error {
	return r.drv.SetName(ctx, name)
}

// Version returns the firmware version of the given board. The main and
// color boards version independently.
func (r *Robot) Version(ctx context.Context, board driver.Board) (string, error) {
	return r.drv.Version(ctx, board)
}

// SerialNumber returns the robot's serial number.
func (r *Robot) SerialNumber(ctx context.Context) (string, error) {
	return r.drv.SerialNumber(ctx)
}

// SKU returns the robot's stock keeping unit string.
func (r *Robot) SKU(ctx context.Context) (string, error) {
	return r.drv.SKU(ctx)
}

// BatteryLevel returns the current battery state.
func (r *Robot) BatteryLevel(ctx context.Context) (driver.BatteryLevel, error) {
	return r.drv.BatteryLevel(ctx)
}

// Cancel requests the robot abort any in-progress motion command. The
// session stays open.
func (r *Robot) Cancel(ctx context.Context) error {
	return r.drv.Cancel(ctx)
}

// Close releases the connection and waits for in-flight event callbacks to
// finish. It is idempotent, never fails on an already-closed transport, and
// runs the release exactly once however many exit paths reach it.
func (r *Robot) Close() error {
	r.closeOnce.Do(func() {
		r.closeErr = r.drv.Close()
		r.Events.Wait()
		r.logger.Log(log.NewStateEvent(r.sessionID, "session", "OPEN", "CLOSED", ""))
	})
	return r.closeErr
}
