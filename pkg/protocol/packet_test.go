package protocol

import (
	"errors"
	"testing"
)

func TestPacketRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		pkt  Packet
	}{
		{
			name: "empty payload",
			pkt:  Packet{Device: 0, Command: 0, ID: 1},
		},
		{
			name: "motor speed",
			pkt: Packet{
				Device:  1,
				Command: 4,
				ID:      42,
				Payload: [PayloadSize]byte{0, 0, 0, 100, 0xFF, 0xFF, 0xFF, 0x9C},
			},
		},
		{
			name: "full payload",
			pkt: Packet{
				Device:  5,
				Command: 4,
				ID:      255,
				Payload: [PayloadSize]byte{
					'h', 'e', 'l', 'l', 'o', ' ', 'w', 'o',
					'r', 'l', 'd', '!', '!', '!', '!', '!',
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := tt.pkt.Encode()
			if len(buf) != PacketSize {
				t.Fatalf("encoded size: got %d, want %d", len(buf), PacketSize)
			}

			decoded, err := Decode(buf[:])
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if decoded != tt.pkt {
				t.Errorf("round trip mismatch: got %+v, want %+v", decoded, tt.pkt)
			}
		})
	}
}

func TestDecodeShortPacket(t *testing.T) {
	_, err := Decode(make([]byte, PacketSize-1))
	if !errors.Is(err, ErrShortPacket) {
		t.Fatalf("got %v, want ErrShortPacket", err)
	}
}

func TestDecodeBadChecksum(t *testing.T) {
	buf := Packet{Device: 1, Command: 8, ID: 3}.Encode()
	buf[PacketSize-1] ^= 0xFF

	_, err := Decode(buf[:])
	if !errors.Is(err, ErrBadChecksum) {
		t.Fatalf("got %v, want ErrBadChecksum", err)
	}
}

func TestChecksum(t *testing.T) {
	// CRC-8 with polynomial 0x07 and zero init over the standard check
	// sequence "123456789" yields 0xF4.
	got := Checksum([]byte("123456789"))
	if got != 0xF4 {
		t.Errorf("Checksum: got 0x%02X, want 0xF4", got)
	}

	if Checksum(nil) != 0 {
		t.Errorf("Checksum of empty input: got 0x%02X, want 0", Checksum(nil))
	}
}
