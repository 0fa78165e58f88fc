package log

import (
	"time"
)

// Event represents a protocol log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID uniquely identifies the robot session (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Direction indicates packet flow relative to the host.
	Direction Direction `cbor:"3,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"4,keyasint"`

	// DeviceID identifies the robot (address or serial), if known.
	DeviceID string `cbor:"5,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Packet      *PacketEvent      `cbor:"6,keyasint,omitempty"` // Wire packets
	Robot       *RobotEventData   `cbor:"7,keyasint,omitempty"` // Device-originated events
	StateChange *StateChangeEvent `cbor:"8,keyasint,omitempty"` // Session/stream state
	Error       *ErrorEventData   `cbor:"9,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of packet flow.
type Direction uint8

const (
	// DirectionIn indicates a packet received from the robot.
	DirectionIn Direction = 0
	// DirectionOut indicates a packet sent to the robot.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryPacket indicates a wire packet (request, response).
	CategoryPacket Category = 0
	// CategoryRobotEvent indicates a device-originated event record.
	CategoryRobotEvent Category = 1
	// CategoryState indicates a session or stream state change.
	CategoryState Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryPacket:
		return "PACKET"
	case CategoryRobotEvent:
		return "EVENT"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// PacketEvent captures a wire packet summary.
type PacketEvent struct {
	// Device is the subsystem device number.
	Device uint8 `cbor:"1,keyasint"`

	// Command is the command number within the subsystem.
	Command uint8 `cbor:"2,keyasint"`

	// PacketID correlates a request with its response.
	PacketID uint8 `cbor:"3,keyasint"`

	// Size is the total packet size in bytes.
	Size int `cbor:"4,keyasint"`
}

// RobotEventData captures a device-originated event delivered to the engine.
type RobotEventData struct {
	// Kind is the event kind name (e.g. "BUMPER").
	Kind string `cbor:"1,keyasint"`
}

// StateChangeEvent captures a session or stream state transition.
type StateChangeEvent struct {
	// Entity names what changed state (e.g. "session", "stream").
	Entity string `cbor:"1,keyasint"`

	// OldState is the previous state name.
	OldState string `cbor:"2,keyasint"`

	// NewState is the new state name.
	NewState string `cbor:"3,keyasint"`

	// Reason optionally explains the transition.
	Reason string `cbor:"4,keyasint,omitempty"`
}

// ErrorEventData captures an error at any layer.
type ErrorEventData struct {
	// Message is the error text.
	Message string `cbor:"1,keyasint"`

	// Context describes what was being done (e.g. "callback BUMPER").
	Context string `cbor:"2,keyasint,omitempty"`
}

// NewPacketEvent builds a packet log event.
func NewPacketEvent(sessionID string, dir Direction, device, command, packetID uint8, size int) Event {
	return Event{
		Timestamp: time.Now(),
		SessionID: sessionID,
		Direction: dir,
		Category:  CategoryPacket,
		Packet: &PacketEvent{
			Device:   device,
			Command:  command,
			PacketID: packetID,
			Size:     size,
		},
	}
}

// NewRobotEvent builds a device-event log event.
func NewRobotEvent(sessionID, kind string) Event {
	return Event{
		Timestamp: time.Now(),
		SessionID: sessionID,
		Direction: DirectionIn,
		Category:  CategoryRobotEvent,
		Robot:     &RobotEventData{Kind: kind},
	}
}

// NewStateEvent builds a state-change log event.
func NewStateEvent(sessionID, entity, oldState, newState, reason string) Event {
	return Event{
		Timestamp: time.Now(),
		SessionID: sessionID,
		Category:  CategoryState,
		StateChange: &StateChangeEvent{
			Entity:   entity,
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	}
}

// NewErrorEvent builds an error log event.
func NewErrorEvent(sessionID, context string, err error) Event {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return Event{
		Timestamp: time.Now(),
		SessionID: sessionID,
		Category:  CategoryError,
		Error: &ErrorEventData{
			Message: msg,
			Context: context,
		},
	}
}
