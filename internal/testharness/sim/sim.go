// Package sim provides an in-memory simulated robot implementing the driver
// boundary. Tests script its responses and inject events; rootctl can run
// against it with --sim.
package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/entwanne/root-robot/pkg/driver"
)

// Robot is an in-memory driver.Driver. The zero value is not usable; create
// it with New. All methods are safe for concurrent use.
type Robot struct {
	mu sync.Mutex

	// Scripted identity and telemetry.
	name     string
	serial   string
	sku      string
	battery  driver.BatteryLevel
	versions map[driver.Board]string

	// Event-enable state, maintained by Enable/DisableEvents.
	enabled driver.DeviceSet

	// Fail, when non-nil, makes every round-trip fail with this error.
	fail error

	// Color sensor data per (sensor, lighting) pair.
	colors map[colorKey][]uint16

	// Recorded command log, oldest first.
	commands []string

	events    chan driver.Event
	streamErr error
	closed    bool
	closeOnce sync.Once

	released func()
}

type colorKey struct {
	sensor   driver.ColorSensor
	lighting driver.ColorLighting
}

// New creates a simulated robot with plausible defaults.
func New() *Robot {
	return &Robot{
		name:    "sim-root",
		serial:  "RT0123456789",
		sku:     "RT001",
		battery: driver.BatteryLevel{Voltage: 4100, Percent: 87},
		versions: map[driver.Board]string{
			driver.BoardMain:  "1.4",
			driver.BoardColor: "1.2",
		},
		colors: make(map[colorKey][]uint16),
		events: make(chan driver.Event, 256),
	}
}

// Emit injects a device-originated event into the stream.
// It panics if the robot is closed.
func (r *Robot) Emit(ev driver.Event) {
	r.events <- ev
}

// FailStream terminates the event stream with a transport fault.
func (r *Robot) FailStream(err error) {
	r.mu.Lock()
	r.streamErr = err
	r.mu.Unlock()
	r.closeOnce.Do(func() { close(r.events) })
}

// SetRoundTripError makes every subsequent round-trip fail with err.
// Pass nil to restore normal behavior.
func (r *Robot) SetRoundTripError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail = err
}

// SetColorData scripts the response for one (sensor, lighting) read.
// Data must contain eight channel values.
func (r *Robot) SetColorData(sensor driver.ColorSensor, lighting driver.ColorLighting, data []uint16) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.colors[colorKey{sensor, lighting}] = data
}

// Commands returns the recorded command log, oldest first.
func (r *Robot) Commands() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.commands))
	copy(out, r.commands)
	return out
}

// LastCommand returns the most recently recorded command, or "".
func (r *Robot) LastCommand() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.commands) == 0 {
		return ""
	}
	return r.commands[len(r.commands)-1]
}

// roundTrip records one command and applies scripted failures.
func (r *Robot) roundTrip(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return &driver.CommunicationError{Op: op, Err: err}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return &driver.CommunicationError{Op: op, Err: driver.ErrClosed}
	}
	if r.fail != nil {
		return &driver.CommunicationError{Op: op, Err: r.fail}
	}
	r.commands = append(r.commands, op)
	return nil
}

// Name implements driver.Driver.
func (r *Robot) Name(ctx context.Context) (string, error) {
	if err := r.roundTrip(ctx, "get name"); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.name, nil
}

// SetName implements driver.Driver.
func (r *Robot) SetName(ctx context.Context, name string) error {
	if err := r.roundTrip(ctx, "set name "+name); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.name = name
	return nil
}

// Version implements driver.Driver.
func (r *Robot) Version(ctx context.Context, board driver.Board) (string, error) {
	if err := r.roundTrip(ctx, "get version "+board.String()); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.versions[board], nil
}

// SerialNumber implements driver.Driver.
func (r *Robot) SerialNumber(ctx context.Context) (string, error) {
	if err := r.roundTrip(ctx, "get serial number"); err != nil {
		return "", err
	}
	return r.serial, nil
}

// SKU implements driver.Driver.
func (r *Robot) SKU(ctx context.Context) (string, error) {
	if err := r.roundTrip(ctx, "get sku"); err != nil {
		return "", err
	}
	return r.sku, nil
}

// BatteryLevel implements driver.Driver.
func (r *Robot) BatteryLevel(ctx context.Context) (driver.BatteryLevel, error) {
	if err := r.roundTrip(ctx, "get battery level"); err != nil {
		return driver.BatteryLevel{}, err
	}
	return r.battery, nil
}

// Cancel implements driver.Driver.
func (r *Robot) Cancel(ctx context.Context) error {
	return r.roundTrip(ctx, "cancel")
}

// EnableEvents implements driver.Driver.
func (r *Robot) EnableEvents(ctx context.Context, devices driver.DeviceSet) error {
	if err := r.roundTrip(ctx, "enable events "+devices.String()); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled |= devices
	return nil
}

// DisableEvents implements driver.Driver.
func (r *Robot) DisableEvents(ctx context.Context, devices driver.DeviceSet) error {
	if err := r.roundTrip(ctx, "disable events "+devices.String()); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled &^= devices
	return nil
}

// EnabledEvents implements driver.Driver.
func (r *Robot) EnabledEvents(ctx context.Context) (driver.DeviceSet, error) {
	if err := r.roundTrip(ctx, "get enabled events"); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enabled, nil
}

// SetMotorSpeed implements driver.Driver.
func (r *Robot) SetMotorSpeed(ctx context.Context, left, right int32) error {
	return r.roundTrip(ctx, fmt.Sprintf("set motor speed %d %d", left, right))
}

// SetLeftMotorSpeed implements driver.Driver.
func (r *Robot) SetLeftMotorSpeed(ctx context.Context, speed int32) error {
	return r.roundTrip(ctx, fmt.Sprintf("set left motor speed %d", speed))
}

// SetRightMotorSpeed implements driver.Driver.
func (r *Robot) SetRightMotorSpeed(ctx context.Context, speed int32) error {
	return r.roundTrip(ctx, fmt.Sprintf("set right motor speed %d", speed))
}

// SetGravityCompensation implements driver.Driver.
func (r *Robot) SetGravityCompensation(ctx context.Context, state driver.GravityState, amount uint16) error {
	return r.roundTrip(ctx, fmt.Sprintf("set gravity compensation %d %d", state, amount))
}

// DriveDistance implements driver.Driver.
func (r *Robot) DriveDistance(ctx context.Context, distance int32, wait bool) error {
	return r.roundTrip(ctx, fmt.Sprintf("drive distance %d wait=%t", distance, wait))
}

// RotateAngle implements driver.Driver.
func (r *Robot) RotateAngle(ctx context.Context, angle int32, wait bool) error {
	return r.roundTrip(ctx, fmt.Sprintf("rotate angle %d wait=%t", angle, wait))
}

// DriveArc implements driver.Driver.
func (r *Robot) DriveArc(ctx context.Context, angle, radius int32, wait bool) error {
	return r.roundTrip(ctx, fmt.Sprintf("drive arc %d %d wait=%t", angle, radius, wait))
}

// SetMarkerEraser implements driver.Driver.
func (r *Robot) SetMarkerEraser(ctx context.Context, position driver.MarkerEraserPosition, wait bool) error {
	return r.roundTrip(ctx, fmt.Sprintf("set marker eraser %d wait=%t", position, wait))
}

// SetLEDAnimation implements driver.Driver.
func (r *Robot) SetLEDAnimation(ctx context.Context, anim driver.LEDAnimation, red, green, blue uint8) error {
	return r.roundTrip(ctx, fmt.Sprintf("set led animation %d %d %d %d", anim, red, green, blue))
}

// PlayNote implements driver.Driver.
func (r *Robot) PlayNote(ctx context.Context, frequency uint32, duration time.Duration) error {
	return r.roundTrip(ctx, fmt.Sprintf("play note %d %s", frequency, duration))
}

// StopNote implements driver.Driver.
func (r *Robot) StopNote(ctx context.Context) error {
	return r.roundTrip(ctx, "stop note")
}

// SayPhrase implements driver.Driver.
func (r *Robot) SayPhrase(ctx context.Context, phrase string, wait bool) error {
	return r.roundTrip(ctx, fmt.Sprintf("say %q wait=%t", phrase, wait))
}

// ColorData implements driver.Driver.
func (r *Robot) ColorData(ctx context.Context, sensor driver.ColorSensor, lighting driver.ColorLighting, format driver.ColorFormat) ([]uint16, error) {
	op := fmt.Sprintf("get color data %d %d %d", sensor, lighting, format)
	if err := r.roundTrip(ctx, op); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if data, ok := r.colors[colorKey{sensor, lighting}]; ok {
		out := make([]uint16, len(data))
		copy(out, data)
		return out, nil
	}
	return make([]uint16, 8), nil
}

// Events implements driver.Driver.
func (r *Robot) Events() <-chan driver.Event {
	return r.events
}

// Err implements driver.Driver.
func (r *Robot) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.streamErr
}

// Close implements driver.Driver. It is idempotent.
func (r *Robot) Close() error {
	r.mu.Lock()
	r.closed = true
	released := r.released
	r.released = nil
	r.mu.Unlock()

	r.closeOnce.Do(func() { close(r.events) })
	if released != nil {
		released()
	}
	return nil
}

// Closed reports whether Close has been called.
func (r *Robot) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}
