package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/entwanne/root-robot/pkg/driver"
)

// Command numbers, grouped by subsystem device.
const (
	// General (device 0)
	CmdGetVersions     = 0
	CmdSetName         = 1
	CmdGetName         = 2
	CmdCancel          = 3
	CmdDisconnect      = 6
	CmdEnableEvents    = 7
	CmdDisableEvents   = 9
	CmdGetEnabled      = 11
	CmdGetSerialNumber = 14
	CmdGetSKU          = 15

	// Motors (device 1)
	CmdSetMotorSpeed      = 4
	CmdSetLeftMotorSpeed  = 6
	CmdSetRightMotorSpeed = 7
	CmdDriveDistance      = 8
	CmdRotateAngle        = 12
	CmdSetGravity         = 13
	CmdDriveArc           = 27
	CmdStallEvent         = 29

	// Marker/eraser (device 2)
	CmdSetMarkerEraser = 0

	// LED ring (device 3)
	CmdSetLEDAnimation = 2

	// Color sensor (device 4)
	CmdGetColorData   = 1
	CmdColorDataEvent = 2

	// Sound (device 5)
	CmdPlayNote  = 0
	CmdStopNote  = 1
	CmdSayPhrase = 4

	// Sensor events (devices 12, 13, 14, 17, 20)
	CmdSensorEvent     = 0
	CmdGetBatteryLevel = 1
)

// GetVersions builds a firmware version query for one board.
func GetVersions(board driver.Board) Packet {
	p := Packet{Device: uint8(driver.DeviceGeneral), Command: CmdGetVersions}
	p.Payload[0] = uint8(board)
	return p
}

// ParseVersion extracts the firmware version string from a GetVersions
// response ("major.minor").
func ParseVersion(p Packet) string {
	return fmt.Sprintf("%d.%d", p.Payload[1], p.Payload[2])
}

// SetName builds a name update. Names longer than the payload are truncated
// at a UTF-8 boundary.
func SetName(name string) Packet {
	p := Packet{Device: uint8(driver.DeviceGeneral), Command: CmdSetName}
	copy(p.Payload[:], truncateUTF8(name, PayloadSize))
	return p
}

// GetName builds a name query.
func GetName() Packet {
	return Packet{Device: uint8(driver.DeviceGeneral), Command: CmdGetName}
}

// ParseString extracts a NUL-padded UTF-8 string from a response payload.
func ParseString(p Packet) string {
	return string(bytes.TrimRight(p.Payload[:], "\x00"))
}

// Cancel builds a stop-and-reset request aborting any in-progress motion.
func Cancel() Packet {
	return Packet{Device: uint8(driver.DeviceGeneral), Command: CmdCancel}
}

// Disconnect builds a disconnect notice.
func Disconnect() Packet {
	return Packet{Device: uint8(driver.DeviceGeneral), Command: CmdDisconnect}
}

// EnableEvents builds an event-enable request for the given subsystems.
func EnableEvents(devices driver.DeviceSet) Packet {
	p := Packet{Device: uint8(driver.DeviceGeneral), Command: CmdEnableEvents}
	p.Payload = deviceBitfield(devices)
	return p
}

// DisableEvents builds an event-disable request for the given subsystems.
func DisableEvents(devices driver.DeviceSet) Packet {
	p := Packet{Device: uint8(driver.DeviceGeneral), Command: CmdDisableEvents}
	p.Payload = deviceBitfield(devices)
	return p
}

// GetEnabled builds a query for the currently event-enabled subsystems.
func GetEnabled() Packet {
	return Packet{Device: uint8(driver.DeviceGeneral), Command: CmdGetEnabled}
}

// ParseEnabled extracts the enabled subsystem set from a GetEnabled response.
func ParseEnabled(p Packet) driver.DeviceSet {
	return parseBitfield(p.Payload)
}

// GetSerialNumber builds a serial number query.
func GetSerialNumber() Packet {
	return Packet{Device: uint8(driver.DeviceGeneral), Command: CmdGetSerialNumber}
}

// GetSKU builds an SKU query.
func GetSKU() Packet {
	return Packet{Device: uint8(driver.DeviceGeneral), Command: CmdGetSKU}
}

// GetBatteryLevel builds a battery query.
func GetBatteryLevel() Packet {
	return Packet{Device: uint8(driver.DeviceBattery), Command: CmdGetBatteryLevel}
}

// ParseBatteryLevel extracts the battery state from a battery response or
// battery event payload.
func ParseBatteryLevel(p Packet) driver.BatteryLevel {
	return driver.BatteryLevel{
		Voltage: binary.BigEndian.Uint16(p.Payload[4:6]),
		Percent: p.Payload[6],
	}
}

// SetMotorSpeed builds a dual wheel speed command (mm/s).
func SetMotorSpeed(left, right int32) Packet {
	p := Packet{Device: uint8(driver.DeviceMotors), Command: CmdSetMotorSpeed}
	binary.BigEndian.PutUint32(p.Payload[0:4], uint32(left))
	binary.BigEndian.PutUint32(p.Payload[4:8], uint32(right))
	return p
}

// SetLeftMotorSpeed builds a left wheel speed command (mm/s).
func SetLeftMotorSpeed(speed int32) Packet {
	p := Packet{Device: uint8(driver.DeviceMotors), Command: CmdSetLeftMotorSpeed}
	binary.BigEndian.PutUint32(p.Payload[0:4], uint32(speed))
	return p
}

// SetRightMotorSpeed builds a right wheel speed command (mm/s).
func SetRightMotorSpeed(speed int32) Packet {
	p := Packet{Device: uint8(driver.DeviceMotors), Command: CmdSetRightMotorSpeed}
	binary.BigEndian.PutUint32(p.Payload[0:4], uint32(speed))
	return p
}

// DriveDistance builds a drive command (signed millimeters). The robot
// responds when the motion completes.
func DriveDistance(distance int32) Packet {
	p := Packet{Device: uint8(driver.DeviceMotors), Command: CmdDriveDistance}
	binary.BigEndian.PutUint32(p.Payload[0:4], uint32(distance))
	return p
}

// RotateAngle builds a rotation command (signed decidegrees). The robot
// responds when the motion completes.
func RotateAngle(angle int32) Packet {
	p := Packet{Device: uint8(driver.DeviceMotors), Command: CmdRotateAngle}
	binary.BigEndian.PutUint32(p.Payload[0:4], uint32(angle))
	return p
}

// SetGravityCompensation builds a gravity compensation command.
func SetGravityCompensation(state driver.GravityState, amount uint16) Packet {
	p := Packet{Device: uint8(driver.DeviceMotors), Command: CmdSetGravity}
	p.Payload[0] = uint8(state)
	binary.BigEndian.PutUint16(p.Payload[1:3], amount)
	return p
}

// DriveArc builds an arc command (signed decidegrees, signed millimeter
// radius). The robot responds when the motion completes.
func DriveArc(angle, radius int32) Packet {
	p := Packet{Device: uint8(driver.DeviceMotors), Command: CmdDriveArc}
	binary.BigEndian.PutUint32(p.Payload[0:4], uint32(angle))
	binary.BigEndian.PutUint32(p.Payload[4:8], uint32(radius))
	return p
}

// SetMarkerEraser builds a tool position command. The robot responds when
// the tool reaches the position.
func SetMarkerEraser(position driver.MarkerEraserPosition) Packet {
	p := Packet{Device: uint8(driver.DeviceMarker), Command: CmdSetMarkerEraser}
	p.Payload[0] = uint8(position)
	return p
}

// SetLEDAnimation builds an LED ring command.
func SetLEDAnimation(anim driver.LEDAnimation, r, g, b uint8) Packet {
	p := Packet{Device: uint8(driver.DeviceLED), Command: CmdSetLEDAnimation}
	p.Payload[0] = uint8(anim)
	p.Payload[1] = r
	p.Payload[2] = g
	p.Payload[3] = b
	return p
}

// GetColorData builds a color sensor bank read.
func GetColorData(sensor driver.ColorSensor, lighting driver.ColorLighting, format driver.ColorFormat) Packet {
	p := Packet{Device: uint8(driver.DeviceColorSensor), Command: CmdGetColorData}
	p.Payload[0] = uint8(sensor)
	p.Payload[1] = uint8(lighting)
	p.Payload[2] = uint8(format)
	return p
}

// ParseColorData extracts the eight 16-bit channel readings from a
// GetColorData response.
func ParseColorData(p Packet) []uint16 {
	data := make([]uint16, 8)
	for i := range data {
		data[i] = binary.BigEndian.Uint16(p.Payload[2*i : 2*i+2])
	}
	return data
}

// PlayNote builds a note command (Hz, duration capped at payload range).
func PlayNote(frequency uint32, duration time.Duration) Packet {
	p := Packet{Device: uint8(driver.DeviceSound), Command: CmdPlayNote}
	binary.BigEndian.PutUint32(p.Payload[0:4], frequency)
	ms := duration.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	if ms > 0xFFFF {
		ms = 0xFFFF
	}
	binary.BigEndian.PutUint16(p.Payload[4:6], uint16(ms))
	return p
}

// StopNote builds a stop-note command.
func StopNote() Packet {
	return Packet{Device: uint8(driver.DeviceSound), Command: CmdStopNote}
}

// SayPhrase builds a speech command. Phrases longer than the payload are
// truncated at a UTF-8 boundary; the robot responds when speech finishes.
func SayPhrase(phrase string) Packet {
	p := Packet{Device: uint8(driver.DeviceSound), Command: CmdSayPhrase}
	copy(p.Payload[:], truncateUTF8(phrase, PayloadSize))
	return p
}

// deviceBitfield packs a DeviceSet into the 128-bit payload bitfield.
// Bit n of the field (counted from the end of the payload) is subsystem n.
func deviceBitfield(devices driver.DeviceSet) [PayloadSize]byte {
	var field [PayloadSize]byte
	for _, n := range devices.Numbers() {
		field[PayloadSize-1-int(n)/8] |= 1 << (uint(n) % 8)
	}
	return field
}

// parseBitfield is the inverse of deviceBitfield.
func parseBitfield(field [PayloadSize]byte) driver.DeviceSet {
	var devices driver.DeviceSet
	for n := driver.DeviceNumber(0); n < 32; n++ {
		if field[PayloadSize-1-int(n)/8]&(1<<(uint(n)%8)) != 0 {
			devices = devices.With(n)
		}
	}
	return devices
}

// truncateUTF8 trims s to at most max bytes without splitting a rune.
func truncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && s[max]&0xC0 == 0x80 {
		max--
	}
	return s[:max]
}
