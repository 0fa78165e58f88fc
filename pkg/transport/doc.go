// Package transport implements the driver boundary over byte links that
// carry raw Root protocol packets.
//
// Conn adapts any io.ReadWriteCloser speaking the 20-byte packet format into
// a driver.Driver: it serializes outgoing requests, correlates responses by
// (device, command, id), surfaces device-originated packets as decoded
// events, and enforces per-request timeouts. The serialport and bridge
// subpackages supply the actual links (a BLE-UART serial bridge and a TCP
// bridge discovered over mDNS) plus device discovery for each.
package transport
