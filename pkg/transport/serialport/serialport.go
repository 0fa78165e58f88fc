// Package serialport drives a robot attached through a BLE-UART serial
// bridge. The bridge forwards raw 20-byte protocol packets in both
// directions; this package opens the port and layers the shared packet
// connection on top.
package serialport

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.bug.st/serial"

	"github.com/entwanne/root-robot/pkg/driver"
	"github.com/entwanne/root-robot/pkg/transport"
)

// DefaultBaudRate matches the bridge firmware's UART configuration.
const DefaultBaudRate = 115200

// Config configures a serial connection.
type Config struct {
	// BaudRate for the port. Zero means DefaultBaudRate.
	BaudRate int

	// Conn configures the packet layer.
	Conn transport.Config
}

// Open opens the named serial port and returns the live driver.
func Open(portName string, cfg Config) (driver.Driver, error) {
	baud := cfg.BaudRate
	if baud == 0 {
		baud = DefaultBaudRate
	}

	port, err := serial.Open(portName, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, &driver.ConnectionError{Device: portName, Err: err}
	}
	return NewConn(port, portName, cfg), nil
}

// NewConn layers the packet protocol over an already-open byte link.
// Exposed so tests can substitute an in-memory port.
func NewConn(rw io.ReadWriteCloser, name string, cfg Config) driver.Driver {
	conn := cfg.Conn
	if conn.DeviceID == "" {
		conn.DeviceID = name
	}
	return transport.NewConn(rw, conn)
}

// Transport discovers robots on local serial ports. Discovery enumerates
// the system's ports and reports each matching one as a device; opening a
// device claims its port exclusively.
type Transport struct {
	// Prefix filters port names (e.g. "/dev/ttyUSB"). Empty matches all.
	Prefix string

	// Config is applied to every opened device.
	Config Config
}

// Discover implements robot.Transport. Port enumeration is immediate, so
// timeout only bounds pathological system calls via ctx.
func (t *Transport) Discover(ctx context.Context, timeout time.Duration) ([]driver.Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, &driver.DiscoveryError{Err: err}
	}

	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, &driver.DiscoveryError{Err: err}
	}

	var devices []driver.Device
	for _, name := range ports {
		if t.Prefix != "" && !strings.HasPrefix(name, t.Prefix) {
			continue
		}
		devices = append(devices, &Device{Port: name, Config: t.Config})
	}
	return devices, nil
}

// Device is a robot reachable through one serial port.
type Device struct {
	// Port is the system port name.
	Port string

	// Config is used when opening the port.
	Config Config
}

// ID implements driver.Device.
func (d *Device) ID() string { return d.Port }

// Name implements driver.Device.
func (d *Device) Name() string { return fmt.Sprintf("root@%s", d.Port) }

// Open implements driver.Device.
func (d *Device) Open(ctx context.Context) (driver.Driver, error) {
	if err := ctx.Err(); err != nil {
		return nil, &driver.ConnectionError{Device: d.Port, Err: err}
	}
	return Open(d.Port, d.Config)
}
