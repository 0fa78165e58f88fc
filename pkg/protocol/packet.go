package protocol

import (
	"errors"
	"fmt"
)

// Packet layout.
const (
	// PacketSize is the fixed size of every wire packet.
	PacketSize = 20

	// PayloadSize is the fixed payload size within a packet.
	PayloadSize = 16
)

// Packet errors.
var (
	ErrShortPacket = errors.New("short packet")
	ErrBadChecksum = errors.New("bad checksum")
)

// Packet is one 20-byte wire packet.
type Packet struct {
	// Device is the subsystem device number.
	Device uint8

	// Command is the command number within the subsystem.
	Command uint8

	// ID correlates a request with its response. Assigned by the sender.
	ID uint8

	// Payload is the fixed 16-byte payload.
	Payload [PayloadSize]byte
}

// Encode serializes the packet, appending the CRC-8 checksum.
func (p Packet) Encode() [PacketSize]byte {
	var buf [PacketSize]byte
	buf[0] = p.Device
	buf[1] = p.Command
	buf[2] = p.ID
	copy(buf[3:3+PayloadSize], p.Payload[:])
	buf[PacketSize-1] = Checksum(buf[:PacketSize-1])
	return buf
}

// Decode parses a 20-byte wire packet and verifies its checksum.
func Decode(data []byte) (Packet, error) {
	if len(data) < PacketSize {
		return Packet{}, fmt.Errorf("%w: %d bytes", ErrShortPacket, len(data))
	}
	if Checksum(data[:PacketSize-1]) != data[PacketSize-1] {
		return Packet{}, ErrBadChecksum
	}

	p := Packet{
		Device:  data[0],
		Command: data[1],
		ID:      data[2],
	}
	copy(p.Payload[:], data[3:3+PayloadSize])
	return p, nil
}

// Checksum computes the CRC-8 (polynomial 0x07, zero init) of data.
func Checksum(data []byte) uint8 {
	var crc uint8
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ 0x07
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
