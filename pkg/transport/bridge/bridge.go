// Package bridge connects to robots exposed over TCP by a network
// bridge. Bridges advertise themselves over mDNS as _root-bridge._tcp
// and relay raw protocol packets between the socket and the robot's
// BLE link.
package bridge

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/enbility/zeroconf/v3"

	"github.com/entwanne/root-robot/pkg/driver"
	"github.com/entwanne/root-robot/pkg/transport"
)

const (
	// ServiceType is the mDNS service advertised by robot bridges.
	ServiceType = "_root-bridge._tcp"

	// Domain is the mDNS browse domain.
	Domain = "local"

	// DefaultDialTimeout bounds the TCP connect to a bridge.
	DefaultDialTimeout = 5 * time.Second
)

// Service describes one advertised bridge.
type Service struct {
	// InstanceName is the mDNS instance name, usually derived from the
	// robot's advertised name.
	InstanceName string

	// Host is the bridge's mDNS hostname.
	Host string

	// Port is the bridge's TCP port.
	Port uint16

	// Addresses holds the bridge's IP addresses as strings.
	Addresses []string
}

// Addr returns the dialable "host:port" address, preferring a resolved
// IP over the mDNS hostname.
func (s *Service) Addr() string {
	host := s.Host
	if len(s.Addresses) > 0 {
		host = s.Addresses[0]
	}
	return net.JoinHostPort(host, fmt.Sprintf("%d", s.Port))
}

// Browse searches for robot bridges until ctx is cancelled. Services
// are aggregated by instance name, so a bridge visible on multiple
// interfaces yields a single entry with merged addresses. The returned
// channel is closed when browsing stops.
func Browse(ctx context.Context, opts ...zeroconf.ClientOption) (<-chan *Service, error) {
	out := make(chan *Service)

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	go func() {
		defer close(out)

		services := make(map[string]*Service)

		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				svc := entryToService(entry)

				existing, found := services[svc.InstanceName]
				if found {
					existing.Addresses = mergeAddresses(existing.Addresses, svc.Addresses)
				} else {
					services[svc.InstanceName] = svc
					select {
					case out <- svc:
					case <-ctx.Done():
						return
					}
				}

			case entry, ok := <-removed:
				if !ok {
					continue
				}
				if existing, found := services[entry.Instance]; found {
					existing.Addresses = removeAddresses(existing.Addresses, entry)
					if len(existing.Addresses) == 0 {
						delete(services, entry.Instance)
					}
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		_ = zeroconf.Browse(ctx, ServiceType, Domain, entries, removed, opts...)
	}()

	return out, nil
}

// entryToService converts a zeroconf entry to a Service.
func entryToService(entry *zeroconf.ServiceEntry) *Service {
	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}

	return &Service{
		InstanceName: entry.Instance,
		Host:         entry.HostName,
		Port:         uint16(entry.Port),
		Addresses:    addrs,
	}
}

// mergeAddresses adds new addresses to the existing list, avoiding
// duplicates.
func mergeAddresses(existing, more []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, addr := range existing {
		seen[addr] = true
	}

	for _, addr := range more {
		if !seen[addr] {
			existing = append(existing, addr)
			seen[addr] = true
		}
	}
	return existing
}

// removeAddresses drops the addresses carried by a departing entry.
func removeAddresses(addresses []string, entry *zeroconf.ServiceEntry) []string {
	toRemove := make(map[string]bool)
	for _, ip := range entry.AddrIPv4 {
		toRemove[ip.String()] = true
	}
	for _, ip := range entry.AddrIPv6 {
		toRemove[ip.String()] = true
	}

	result := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		if !toRemove[addr] {
			result = append(result, addr)
		}
	}
	return result
}

// Transport discovers robots behind mDNS-advertised bridges.
type Transport struct {
	// Config is applied to every opened device.
	Config Config

	// ClientOptions are passed to the zeroconf browser, e.g. to pin a
	// network interface.
	ClientOptions []zeroconf.ClientOption
}

// Config configures a bridge connection.
type Config struct {
	// DialTimeout bounds the TCP connect. Zero means DefaultDialTimeout.
	DialTimeout time.Duration

	// Conn configures the packet layer.
	Conn transport.Config
}

// Discover implements robot.Transport. It browses for the full timeout
// window and returns the bridges seen, in arrival order.
func (t *Transport) Discover(ctx context.Context, timeout time.Duration) ([]driver.Device, error) {
	browseCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	found, err := Browse(browseCtx, t.ClientOptions...)
	if err != nil {
		return nil, &driver.DiscoveryError{Err: err}
	}

	var devices []driver.Device
	for svc := range found {
		devices = append(devices, &Device{Service: *svc, Config: t.Config})
	}
	if err := ctx.Err(); err != nil {
		return nil, &driver.DiscoveryError{Err: err}
	}
	return devices, nil
}

// Device is a robot reachable through one advertised bridge.
type Device struct {
	// Service is the advertisement the device was built from.
	Service Service

	// Config is used when dialing the bridge.
	Config Config
}

// ID implements driver.Device.
func (d *Device) ID() string { return d.Service.Addr() }

// Name implements driver.Device.
func (d *Device) Name() string { return d.Service.InstanceName }

// Open implements driver.Device. It dials the bridge and layers the
// packet protocol over the socket.
func (d *Device) Open(ctx context.Context) (driver.Driver, error) {
	timeout := d.Config.DialTimeout
	if timeout == 0 {
		timeout = DefaultDialTimeout
	}

	dialer := net.Dialer{Timeout: timeout}
	nc, err := dialer.DialContext(ctx, "tcp", d.Service.Addr())
	if err != nil {
		return nil, &driver.ConnectionError{Device: d.Name(), Err: err}
	}

	conn := d.Config.Conn
	if conn.DeviceID == "" {
		conn.DeviceID = d.Name()
	}
	return transport.NewConn(nc, conn), nil
}
