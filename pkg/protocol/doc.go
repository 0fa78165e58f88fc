// Package protocol implements the Root robot wire protocol used by the
// concrete transports.
//
// Every exchange is a fixed 20-byte packet: a subsystem device number, a
// command number, an 8-bit packet id, a 16-byte payload and a trailing CRC-8
// checksum. Requests carry a host-assigned id; the robot echoes the same
// (device, command, id) triple in the response. Device-originated events use
// well-known (device, command) pairs and the robot's own id counter.
//
// The package only encodes and decodes packets; request/response correlation
// and timeouts belong to the transports.
package protocol
