package protocol

import (
	"encoding/binary"
	"fmt"

	"github.com/entwanne/root-robot/pkg/driver"
)

// IsEvent reports whether a (device, command) pair is a device-originated
// event rather than a response to a host request.
func IsEvent(device, command uint8) bool {
	switch driver.DeviceNumber(device) {
	case driver.DeviceBumpers, driver.DeviceLight, driver.DeviceBattery,
		driver.DeviceTouch, driver.DeviceCliff:
		return command == CmdSensorEvent
	case driver.DeviceMotors:
		return command == CmdStallEvent
	case driver.DeviceColorSensor:
		return command == CmdColorDataEvent
	default:
		return false
	}
}

// DecodeEvent decodes a device-originated event packet.
func DecodeEvent(p Packet) (driver.Event, error) {
	ts := binary.BigEndian.Uint32(p.Payload[0:4])

	switch driver.DeviceNumber(p.Device) {
	case driver.DeviceBumpers:
		state := p.Payload[4]
		return driver.BumperEvent{
			Timestamp: ts,
			Left:      state&0x80 != 0,
			Right:     state&0x40 != 0,
		}, nil

	case driver.DeviceTouch:
		state := p.Payload[4]
		return driver.TouchEvent{
			Timestamp:  ts,
			FrontLeft:  state&0x80 != 0,
			FrontRight: state&0x40 != 0,
			RearLeft:   state&0x20 != 0,
			RearRight:  state&0x10 != 0,
		}, nil

	case driver.DeviceLight:
		return driver.LightEvent{
			Timestamp: ts,
			State:     driver.LightState(p.Payload[4]),
			Left:      binary.BigEndian.Uint16(p.Payload[5:7]),
			Right:     binary.BigEndian.Uint16(p.Payload[7:9]),
		}, nil

	case driver.DeviceCliff:
		return driver.CliffEvent{
			Timestamp: ts,
			Detected:  p.Payload[4] != 0,
			Sensor:    uint32(binary.BigEndian.Uint16(p.Payload[5:7])),
			Threshold: uint32(binary.BigEndian.Uint16(p.Payload[7:9])),
		}, nil

	case driver.DeviceBattery:
		level := ParseBatteryLevel(p)
		return driver.BatteryEvent{
			Timestamp: ts,
			Voltage:   level.Voltage,
			Percent:   level.Percent,
		}, nil

	case driver.DeviceMotors:
		return driver.StallEvent{
			Timestamp: ts,
			Motor:     driver.StallMotor(p.Payload[4]),
			Cause:     driver.StallCause(p.Payload[5]),
		}, nil

	case driver.DeviceColorSensor:
		var ev driver.ColorEvent
		for i := 0; i < PayloadSize; i++ {
			ev.Colors[2*i] = p.Payload[i] >> 4
			ev.Colors[2*i+1] = p.Payload[i] & 0x0F
		}
		return ev, nil

	default:
		return nil, fmt.Errorf("unknown event packet: device %d command %d", p.Device, p.Command)
	}
}

// Completion maps an unmatched command response to the completion event it
// represents: motion completions and speech completions. Returns false for
// responses that do not represent a completion.
func Completion(device, command uint8) (driver.Event, bool) {
	if done, ok := MotionDone(device, command); ok {
		return done, true
	}
	if driver.DeviceNumber(device) == driver.DeviceSound && command == CmdSayPhrase {
		return driver.SpeechDoneEvent{}, true
	}
	return nil, false
}

// MotionDone maps a completed motion command to its completion event.
// Returns false for commands that are not motion commands.
func MotionDone(device, command uint8) (driver.MotionDoneEvent, bool) {
	if driver.DeviceNumber(device) == driver.DeviceMotors {
		switch command {
		case CmdDriveDistance:
			return driver.MotionDoneEvent{Op: driver.MotionDrive}, true
		case CmdRotateAngle:
			return driver.MotionDoneEvent{Op: driver.MotionRotate}, true
		case CmdDriveArc:
			return driver.MotionDoneEvent{Op: driver.MotionArc}, true
		}
	}
	if driver.DeviceNumber(device) == driver.DeviceMarker && command == CmdSetMarkerEraser {
		return driver.MotionDoneEvent{Op: driver.MotionTool}, true
	}
	return driver.MotionDoneEvent{}, false
}
