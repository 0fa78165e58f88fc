package protocol

import (
	"testing"
	"time"

	"github.com/entwanne/root-robot/pkg/driver"
)

func TestSetMotorSpeedPayload(t *testing.T) {
	p := SetMotorSpeed(100, -100)

	if p.Device != uint8(driver.DeviceMotors) || p.Command != CmdSetMotorSpeed {
		t.Fatalf("wrong header: device %d command %d", p.Device, p.Command)
	}

	want := [8]byte{0, 0, 0, 100, 0xFF, 0xFF, 0xFF, 0x9C}
	if [8]byte(p.Payload[0:8]) != want {
		t.Errorf("payload: got %v, want %v", p.Payload[0:8], want)
	}
}

func TestSetNameTruncatesUTF8(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short", "Root", "Root"},
		{"exact", "0123456789abcdef", "0123456789abcdef"},
		{"too long", "0123456789abcdefgh", "0123456789abcdef"},
		// 15 ASCII bytes then a 2-byte rune straddling the boundary.
		{"rune boundary", "0123456789abcdeé", "0123456789abcde"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := SetName(tt.in)
			if got := ParseString(p); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDeviceBitfieldRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		devices driver.DeviceSet
	}{
		{"empty", 0},
		{"single low", driver.Devices(driver.DeviceGeneral)},
		{"single high", driver.Devices(driver.DeviceCliff)},
		{"mixed", driver.Devices(driver.DeviceMotors, driver.DeviceBumpers, driver.DeviceTouch)},
		{"all", driver.AllDevices},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := EnableEvents(tt.devices)
			if got := parseBitfield(p.Payload); got != tt.devices {
				t.Errorf("got %v, want %v", got, tt.devices)
			}
		})
	}
}

func TestDeviceBitfieldPlacement(t *testing.T) {
	// Subsystem n occupies bit n counted from the end of the payload:
	// bumpers (12) sits in payload[14] bit 4.
	p := EnableEvents(driver.Devices(driver.DeviceBumpers))

	for i, b := range p.Payload {
		switch i {
		case 14:
			if b != 1<<4 {
				t.Errorf("payload[14]: got %#02x, want %#02x", b, 1<<4)
			}
		default:
			if b != 0 {
				t.Errorf("payload[%d]: got %#02x, want 0", i, b)
			}
		}
	}
}

func TestParseVersion(t *testing.T) {
	p := Packet{Device: 0, Command: CmdGetVersions}
	p.Payload[0] = uint8(driver.BoardMain)
	p.Payload[1] = 1
	p.Payload[2] = 4

	if got := ParseVersion(p); got != "1.4" {
		t.Errorf("got %q, want %q", got, "1.4")
	}
}

func TestParseBatteryLevel(t *testing.T) {
	var p Packet
	p.Payload[4] = 0x10 // 4176 mV
	p.Payload[5] = 0x50
	p.Payload[6] = 87

	level := ParseBatteryLevel(p)
	if level.Voltage != 4176 {
		t.Errorf("voltage: got %d, want 4176", level.Voltage)
	}
	if level.Percent != 87 {
		t.Errorf("percent: got %d, want 87", level.Percent)
	}
}

func TestPlayNoteDurationClamp(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		wantMS   uint16
	}{
		{"one second", time.Second, 1000},
		{"negative", -time.Second, 0},
		{"overflow", 2 * time.Minute, 0xFFFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PlayNote(440, tt.duration)
			got := uint16(p.Payload[4])<<8 | uint16(p.Payload[5])
			if got != tt.wantMS {
				t.Errorf("duration: got %d ms, want %d ms", got, tt.wantMS)
			}
		})
	}
}

func TestParseColorData(t *testing.T) {
	var p Packet
	for i := 0; i < 8; i++ {
		p.Payload[2*i] = uint8(i)
		p.Payload[2*i+1] = 0x10
	}

	data := ParseColorData(p)
	if len(data) != 8 {
		t.Fatalf("got %d readings, want 8", len(data))
	}
	for i, v := range data {
		want := uint16(i)<<8 | 0x10
		if v != want {
			t.Errorf("reading %d: got %d, want %d", i, v, want)
		}
	}
}
