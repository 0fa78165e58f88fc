package driver

// EventKind is the discriminant used to route an Event to a callback.
type EventKind uint8

// Event kinds.
const (
	KindBumper EventKind = iota
	KindTouch
	KindLight
	KindCliff
	KindStall
	KindBattery
	KindColor
	KindMotionDone
	KindSpeechDone
)

// String returns a human-readable event kind name.
func (k EventKind) String() string {
	switch k {
	case KindBumper:
		return "BUMPER"
	case KindTouch:
		return "TOUCH"
	case KindLight:
		return "LIGHT"
	case KindCliff:
		return "CLIFF"
	case KindStall:
		return "STALL"
	case KindBattery:
		return "BATTERY"
	case KindColor:
		return "COLOR"
	case KindMotionDone:
		return "MOTION_DONE"
	case KindSpeechDone:
		return "SPEECH_DONE"
	default:
		return "UNKNOWN"
	}
}

// Event is an immutable, kind-tagged record the robot reported.
type Event interface {
	// Kind returns the event's discriminant.
	Kind() EventKind
}

// BumperEvent reports a change of the front bumper switches.
// Timestamp is milliseconds since robot boot.
type BumperEvent struct {
	Timestamp uint32
	Left      bool
	Right     bool
}

// Kind implements Event.
func (BumperEvent) Kind() EventKind { return KindBumper }

// TouchEvent reports a change of the four top touch zones.
type TouchEvent struct {
	Timestamp  uint32
	FrontLeft  bool
	FrontRight bool
	RearLeft   bool
	RearRight  bool
}

// Kind implements Event.
func (TouchEvent) Kind() EventKind { return KindTouch }

// LightState describes the ambient light condition seen by the eyes.
type LightState uint8

// Light states.
const (
	LightDarker      LightState = 4
	LightRightBright LightState = 5
	LightLeftBright  LightState = 6
	LightBrighter    LightState = 7
)

// LightEvent reports an ambient light level change, with raw per-eye
// millivolt readings.
type LightEvent struct {
	Timestamp uint32
	State     LightState
	Left      uint16
	Right     uint16
}

// Kind implements Event.
func (LightEvent) Kind() EventKind { return KindLight }

// CliffEvent reports the cliff sensor crossing its threshold.
type CliffEvent struct {
	Timestamp uint32
	Detected  bool
	Sensor    uint32
	Threshold uint32
}

// Kind implements Event.
func (CliffEvent) Kind() EventKind { return KindCliff }

// StallMotor identifies the motor involved in a stall.
type StallMotor uint8

// Stalled motors.
const (
	StallLeft   StallMotor = 0
	StallRight  StallMotor = 1
	StallMarker StallMotor = 2
)

// StallCause describes why a motor stalled.
type StallCause uint8

// Stall causes.
const (
	StallNone         StallCause = 0
	StallOverCurrent  StallCause = 1
	StallUnderCurrent StallCause = 2
	StallUnderSpeed   StallCause = 3
	StallSaturated    StallCause = 4
	StallTimeout      StallCause = 5
)

func (c StallCause) String() string {
	switch c {
	case StallNone:
		return "none"
	case StallOverCurrent:
		return "over-current"
	case StallUnderCurrent:
		return "under-current"
	case StallUnderSpeed:
		return "under-speed"
	case StallSaturated:
		return "saturated"
	case StallTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// StallEvent reports a motor stall.
type StallEvent struct {
	Timestamp uint32
	Motor     StallMotor
	Cause     StallCause
}

// Kind implements Event.
func (StallEvent) Kind() EventKind { return KindStall }

// BatteryEvent reports a battery level change.
type BatteryEvent struct {
	Timestamp uint32
	Voltage   uint16
	Percent   uint8
}

// Kind implements Event.
func (BatteryEvent) Kind() EventKind { return KindBattery }

// ColorEvent reports a snapshot of identified colors across all 32 color
// sensor positions. Each entry is a 4-bit color id.
type ColorEvent struct {
	Colors [32]uint8
}

// Kind implements Event.
func (ColorEvent) Kind() EventKind { return KindColor }

// MotionOp identifies which motion command completed.
type MotionOp uint8

// Motion operations.
const (
	MotionDrive MotionOp = iota
	MotionRotate
	MotionArc
	MotionTool
)

// String returns a human-readable motion operation name.
func (op MotionOp) String() string {
	switch op {
	case MotionDrive:
		return "DRIVE"
	case MotionRotate:
		return "ROTATE"
	case MotionArc:
		return "ARC"
	case MotionTool:
		return "TOOL"
	default:
		return "UNKNOWN"
	}
}

// MotionDoneEvent reports completion of a motion command.
type MotionDoneEvent struct {
	Op MotionOp
}

// Kind implements Event.
func (MotionDoneEvent) Kind() EventKind { return KindMotionDone }

// SpeechDoneEvent reports that a spoken phrase finished playing.
type SpeechDoneEvent struct{}

// Kind implements Event.
func (SpeechDoneEvent) Kind() EventKind { return KindSpeechDone }
