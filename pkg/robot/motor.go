package robot

import (
	"context"

	"github.com/entwanne/root-robot/pkg/driver"
)

// DefaultGravityAmount is the gravity compensation magnitude used by the
// robot's own app, in tenths of a percent.
const DefaultGravityAmount uint16 = 500

// Motor issues wheel motion commands. Commands taking a wait flag block
// until the robot reports motion completion when wait is true, and return
// once the command is accepted otherwise.
type Motor struct {
	drv driver.Driver
}

// SetSpeed sets both wheel speeds in mm/s.
func (m *Motor) SetSpeed(ctx context.Context, left, right int32) error {
	return m.drv.SetMotorSpeed(ctx, left, right)
}

// SetLeftSpeed sets the left wheel speed in mm/s.
func (m *Motor) SetLeftSpeed(ctx context.Context, speed int32) error {
	return m.drv.SetLeftMotorSpeed(ctx, speed)
}

// SetRightSpeed sets the right wheel speed in mm/s.
func (m *Motor) SetRightSpeed(ctx context.Context, speed int32) error {
	return m.drv.SetRightMotorSpeed(ctx, speed)
}

// Drive drives a signed distance in millimeters.
func (m *Motor) Drive(ctx context.Context, distance int32, wait bool) error {
	return m.drv.DriveDistance(ctx, distance, wait)
}

// Rotate rotates a signed angle in decidegrees.
func (m *Motor) Rotate(ctx context.Context, angle int32, wait bool) error {
	return m.drv.RotateAngle(ctx, angle, wait)
}

// DriveArc drives an arc of the given angle (decidegrees) and radius
// (millimeters).
func (m *Motor) DriveArc(ctx context.Context, angle, radius int32, wait bool) error {
	return m.drv.DriveArc(ctx, angle, radius, wait)
}

// EnableGravityCompensation applies gravity compensation continuously with
// the given magnitude (tenths of a percent).
func (m *Motor) EnableGravityCompensation(ctx context.Context, amount uint16) error {
	return m.drv.SetGravityCompensation(ctx, driver.GravityOn, amount)
}

// EnableGravityCompensationOnMarker applies gravity compensation only while
// the marker is down.
func (m *Motor) EnableGravityCompensationOnMarker(ctx context.Context, amount uint16) error {
	return m.drv.SetGravityCompensation(ctx, driver.GravityOnMarker, amount)
}

// DisableGravityCompensation turns gravity compensation off.
func (m *Motor) DisableGravityCompensation(ctx context.Context) error {
	return m.drv.SetGravityCompensation(ctx, driver.GravityOff, 0)
}
