package driver

import (
	"context"
	"time"
)

// Board identifies one of the robot's two queryable firmware boards.
type Board uint8

const (
	// BoardMain is the main controller board.
	BoardMain Board = 0xA5

	// BoardColor is the color-sensor controller board.
	BoardColor Board = 0xC6
)

// String returns a human-readable board name.
func (b Board) String() string {
	switch b {
	case BoardMain:
		return "MAIN"
	case BoardColor:
		return "COLOR"
	default:
		return "UNKNOWN"
	}
}

// MarkerEraserPosition is the position of the combined marker/eraser tool.
type MarkerEraserPosition uint8

const (
	// ToolUp raises both marker and eraser.
	ToolUp MarkerEraserPosition = 0

	// ToolMarkerDown lowers the marker.
	ToolMarkerDown MarkerEraserPosition = 1

	// ToolEraserDown lowers the eraser.
	ToolEraserDown MarkerEraserPosition = 2
)

// GravityState selects when motor gravity compensation is applied.
type GravityState uint8

const (
	// GravityOff disables gravity compensation.
	GravityOff GravityState = 0

	// GravityOn applies gravity compensation continuously.
	GravityOn GravityState = 1

	// GravityOnMarker applies gravity compensation only while the marker
	// is down.
	GravityOnMarker GravityState = 2
)

// LEDAnimation is an LED ring animation mode.
type LEDAnimation uint8

const (
	// LEDOff turns the LED ring off.
	LEDOff LEDAnimation = 0

	// LEDOn shows a steady color.
	LEDOn LEDAnimation = 1

	// LEDBlink blinks the current color.
	LEDBlink LEDAnimation = 2

	// LEDSpin spins the current color around the ring.
	LEDSpin LEDAnimation = 3
)

// ColorSensor selects one bank of eight color-sensor positions.
// The robot has four addressable banks across its two sensor chips.
type ColorSensor uint8

// ColorLighting selects the illumination used for a color read.
type ColorLighting uint8

const (
	// LightingOff reads the ambient (black) level.
	LightingOff ColorLighting = 0

	// LightingRed reads under red illumination.
	LightingRed ColorLighting = 1

	// LightingGreen reads under green illumination.
	LightingGreen ColorLighting = 2

	// LightingBlue reads under blue illumination.
	LightingBlue ColorLighting = 3
)

// ColorFormat selects the resolution of color sensor data.
type ColorFormat uint8

const (
	// FormatADC returns raw 12-bit ADC counts.
	FormatADC ColorFormat = 0

	// FormatMillivolts returns calibrated millivolt values.
	FormatMillivolts ColorFormat = 1
)

// BatteryLevel is a battery query result.
type BatteryLevel struct {
	// Voltage is the battery voltage in millivolts.
	Voltage uint16

	// Percent is the charge level, 0-100.
	Percent uint8
}

// Device is an opaque reference to a discovered robot. It stays valid until
// passed to Open; concurrent opens of the same device are rejected by the
// transport.
type Device interface {
	// ID returns a stable identifier for the device (address or serial).
	ID() string

	// Name returns the advertised device name, if any.
	Name() string

	// Open establishes the exclusive connection and returns the live
	// driver capability. It fails with a *ConnectionError if the device
	// is unreachable or already claimed.
	Open(ctx context.Context) (Driver, error)
}

// Driver is the capability surface of one open robot connection.
// Implementations must be safe for concurrent use; command round-trips
// issued sequentially by a caller execute in issuance order.
type Driver interface {
	// Name returns the robot's user-visible name.
	Name(ctx context.Context) (string, error)

	// SetName sets the robot's user-visible name.
	SetName(ctx context.Context, name string) error

	// Version returns the firmware version string of the given board.
	Version(ctx context.Context, board Board) (string, error)

	// SerialNumber returns the robot's serial number.
	SerialNumber(ctx context.Context) (string, error)

	// SKU returns the robot's stock keeping unit string.
	SKU(ctx context.Context) (string, error)

	// BatteryLevel returns the current battery state.
	BatteryLevel(ctx context.Context) (BatteryLevel, error)

	// Cancel aborts any in-progress motion command. It does not close
	// the connection.
	Cancel(ctx context.Context) error

	// EnableEvents enables event emission for the given device subsystems.
	EnableEvents(ctx context.Context, devices DeviceSet) error

	// DisableEvents disables event emission for the given subsystems.
	DisableEvents(ctx context.Context, devices DeviceSet) error

	// EnabledEvents returns the subsystems currently emitting events.
	EnabledEvents(ctx context.Context) (DeviceSet, error)

	// SetMotorSpeed sets both wheel speeds in mm/s.
	SetMotorSpeed(ctx context.Context, left, right int32) error

	// SetLeftMotorSpeed sets the left wheel speed in mm/s.
	SetLeftMotorSpeed(ctx context.Context, speed int32) error

	// SetRightMotorSpeed sets the right wheel speed in mm/s.
	SetRightMotorSpeed(ctx context.Context, speed int32) error

	// SetGravityCompensation configures gravity compensation.
	// Amount is in tenths of a percent, 0-3000.
	SetGravityCompensation(ctx context.Context, state GravityState, amount uint16) error

	// DriveDistance drives a signed distance in millimeters. With wait
	// it blocks until the robot reports motion completion.
	DriveDistance(ctx context.Context, distance int32, wait bool) error

	// RotateAngle rotates a signed angle in decidegrees. With wait it
	// blocks until the robot reports motion completion.
	RotateAngle(ctx context.Context, angle int32, wait bool) error

	// DriveArc drives an arc of the given angle (decidegrees) and radius
	// (millimeters). With wait it blocks until completion.
	DriveArc(ctx context.Context, angle, radius int32, wait bool) error

	// SetMarkerEraser moves the marker/eraser tool. With wait it blocks
	// until the tool reports its new position.
	SetMarkerEraser(ctx context.Context, position MarkerEraserPosition, wait bool) error

	// SetLEDAnimation sets the LED ring animation and color.
	SetLEDAnimation(ctx context.Context, anim LEDAnimation, r, g, b uint8) error

	// PlayNote plays a frequency (Hz) for the given duration.
	PlayNote(ctx context.Context, frequency uint32, duration time.Duration) error

	// StopNote stops any playing note.
	StopNote(ctx context.Context) error

	// SayPhrase speaks a phrase. With wait it blocks until speech ends.
	SayPhrase(ctx context.Context, phrase string, wait bool) error

	// ColorData reads the eight positions of one sensor bank under the
	// given lighting, in the given format.
	ColorData(ctx context.Context, sensor ColorSensor, lighting ColorLighting, format ColorFormat) ([]uint16, error)

	// Events returns the device-originated event stream. The channel
	// preserves emission order and is closed when the connection ends.
	Events() <-chan Event

	// Err reports the stream fault that closed the event channel, or nil
	// after a clean Close. Valid once the Events channel is closed.
	Err() error

	// Close releases the connection. Close is idempotent and never fails
	// on an already-closed connection.
	Close() error
}
