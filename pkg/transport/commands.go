package transport

import (
	"context"
	"time"

	"github.com/entwanne/root-robot/pkg/driver"
	"github.com/entwanne/root-robot/pkg/protocol"
)

// Name implements driver.Driver.
func (c *Conn) Name(ctx context.Context) (string, error) {
	resp, err := c.send(ctx, "get name", protocol.GetName(), true)
	if err != nil {
		return "", err
	}
	return protocol.ParseString(resp), nil
}

// SetName implements driver.Driver.
func (c *Conn) SetName(ctx context.Context, name string) error {
	_, err := c.send(ctx, "set name", protocol.SetName(name), true)
	return err
}

// Version implements driver.Driver.
func (c *Conn) Version(ctx context.Context, board driver.Board) (string, error) {
	resp, err := c.send(ctx, "get version", protocol.GetVersions(board), true)
	if err != nil {
		return "", err
	}
	return protocol.ParseVersion(resp), nil
}

// SerialNumber implements driver.Driver.
func (c *Conn) SerialNumber(ctx context.Context) (string, error) {
	resp, err := c.send(ctx, "get serial number", protocol.GetSerialNumber(), true)
	if err != nil {
		return "", err
	}
	return protocol.ParseString(resp), nil
}

// SKU implements driver.Driver.
func (c *Conn) SKU(ctx context.Context) (string, error) {
	resp, err := c.send(ctx, "get sku", protocol.GetSKU(), true)
	if err != nil {
		return "", err
	}
	return protocol.ParseString(resp), nil
}

// BatteryLevel implements driver.Driver.
func (c *Conn) BatteryLevel(ctx context.Context) (driver.BatteryLevel, error) {
	resp, err := c.send(ctx, "get battery level", protocol.GetBatteryLevel(), true)
	if err != nil {
		return driver.BatteryLevel{}, err
	}
	return protocol.ParseBatteryLevel(resp), nil
}

// Cancel implements driver.Driver.
func (c *Conn) Cancel(ctx context.Context) error {
	_, err := c.send(ctx, "cancel", protocol.Cancel(), false)
	return err
}

// EnableEvents implements driver.Driver.
func (c *Conn) EnableEvents(ctx context.Context, devices driver.DeviceSet) error {
	_, err := c.send(ctx, "enable events", protocol.EnableEvents(devices), false)
	return err
}

// DisableEvents implements driver.Driver.
func (c *Conn) DisableEvents(ctx context.Context, devices driver.DeviceSet) error {
	_, err := c.send(ctx, "disable events", protocol.DisableEvents(devices), false)
	return err
}

// EnabledEvents implements driver.Driver.
func (c *Conn) EnabledEvents(ctx context.Context) (driver.DeviceSet, error) {
	resp, err := c.send(ctx, "get enabled events", protocol.GetEnabled(), true)
	if err != nil {
		return 0, err
	}
	return protocol.ParseEnabled(resp), nil
}

// SetMotorSpeed implements driver.Driver.
func (c *Conn) SetMotorSpeed(ctx context.Context, left, right int32) error {
	_, err := c.send(ctx, "set motor speed", protocol.SetMotorSpeed(left, right), false)
	return err
}

// SetLeftMotorSpeed implements driver.Driver.
func (c *Conn) SetLeftMotorSpeed(ctx context.Context, speed int32) error {
	_, err := c.send(ctx, "set left motor speed", protocol.SetLeftMotorSpeed(speed), false)
	return err
}

// SetRightMotorSpeed implements driver.Driver.
func (c *Conn) SetRightMotorSpeed(ctx context.Context, speed int32) error {
	_, err := c.send(ctx, "set right motor speed", protocol.SetRightMotorSpeed(speed), false)
	return err
}

// SetGravityCompensation implements driver.Driver.
func (c *Conn) SetGravityCompensation(ctx context.Context, state driver.GravityState, amount uint16) error {
	_, err := c.send(ctx, "set gravity compensation", protocol.SetGravityCompensation(state, amount), false)
	return err
}

// DriveDistance implements driver.Driver. With wait the motion completion
// response is awaited without a timeout shorter than the motion itself: the
// round-trip timeout is lifted to the context's deadline.
func (c *Conn) DriveDistance(ctx context.Context, distance int32, wait bool) error {
	return c.motion(ctx, "drive distance", protocol.DriveDistance(distance), wait)
}

// RotateAngle implements driver.Driver.
func (c *Conn) RotateAngle(ctx context.Context, angle int32, wait bool) error {
	return c.motion(ctx, "rotate angle", protocol.RotateAngle(angle), wait)
}

// DriveArc implements driver.Driver.
func (c *Conn) DriveArc(ctx context.Context, angle, radius int32, wait bool) error {
	return c.motion(ctx, "drive arc", protocol.DriveArc(angle, radius), wait)
}

// SetMarkerEraser implements driver.Driver.
func (c *Conn) SetMarkerEraser(ctx context.Context, position driver.MarkerEraserPosition, wait bool) error {
	return c.motion(ctx, "set marker eraser", protocol.SetMarkerEraser(position), wait)
}

// motion sends a motion command. Completions take as long as the motion, so
// waited motions are bounded only by ctx, not the request timeout.
func (c *Conn) motion(ctx context.Context, op string, p protocol.Packet, wait bool) error {
	if !wait {
		_, err := c.send(ctx, op, p, false)
		return err
	}
	_, err := c.sendNoTimeout(ctx, op, p)
	return err
}

// SetLEDAnimation implements driver.Driver.
func (c *Conn) SetLEDAnimation(ctx context.Context, anim driver.LEDAnimation, r, g, b uint8) error {
	_, err := c.send(ctx, "set led animation", protocol.SetLEDAnimation(anim, r, g, b), false)
	return err
}

// PlayNote implements driver.Driver.
func (c *Conn) PlayNote(ctx context.Context, frequency uint32, duration time.Duration) error {
	_, err := c.send(ctx, "play note", protocol.PlayNote(frequency, duration), false)
	return err
}

// StopNote implements driver.Driver.
func (c *Conn) StopNote(ctx context.Context) error {
	_, err := c.send(ctx, "stop note", protocol.StopNote(), false)
	return err
}

// SayPhrase implements driver.Driver.
func (c *Conn) SayPhrase(ctx context.Context, phrase string, wait bool) error {
	if !wait {
		_, err := c.send(ctx, "say phrase", protocol.SayPhrase(phrase), false)
		return err
	}
	_, err := c.sendNoTimeout(ctx, "say phrase", protocol.SayPhrase(phrase))
	return err
}

// ColorData implements driver.Driver.
func (c *Conn) ColorData(ctx context.Context, sensor driver.ColorSensor, lighting driver.ColorLighting, format driver.ColorFormat) ([]uint16, error) {
	resp, err := c.send(ctx, "get color data", protocol.GetColorData(sensor, lighting, format), true)
	if err != nil {
		return nil, err
	}
	return protocol.ParseColorData(resp), nil
}

// Compile-time interface satisfaction check.
var _ driver.Driver = (*Conn)(nil)
