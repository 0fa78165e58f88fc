package bridge

import (
	"net"
	"testing"

	"github.com/enbility/zeroconf/v3"
	"github.com/stretchr/testify/assert"
)

func TestServiceAddrPrefersResolvedIP(t *testing.T) {
	svc := &Service{
		Host:      "bridge.local",
		Port:      7332,
		Addresses: []string{"192.168.1.20", "fe80::1"},
	}
	assert.Equal(t, "192.168.1.20:7332", svc.Addr())

	svc.Addresses = nil
	assert.Equal(t, "bridge.local:7332", svc.Addr())
}

func TestEntryToService(t *testing.T) {
	entry := &zeroconf.ServiceEntry{
		HostName: "bridge.local",
		Port:     7332,
		AddrIPv4: []net.IP{net.ParseIP("192.168.1.20")},
		AddrIPv6: []net.IP{net.ParseIP("fe80::1")},
	}
	entry.Instance = "Root Alpha"

	svc := entryToService(entry)
	assert.Equal(t, "Root Alpha", svc.InstanceName)
	assert.Equal(t, "bridge.local", svc.Host)
	assert.Equal(t, uint16(7332), svc.Port)
	assert.Equal(t, []string{"192.168.1.20", "fe80::1"}, svc.Addresses)
}

func TestMergeAddresses(t *testing.T) {
	merged := mergeAddresses(
		[]string{"192.168.1.20", "fe80::1"},
		[]string{"fe80::1", "10.0.0.5"},
	)
	assert.Equal(t, []string{"192.168.1.20", "fe80::1", "10.0.0.5"}, merged)
}

func TestRemoveAddresses(t *testing.T) {
	entry := &zeroconf.ServiceEntry{
		AddrIPv4: []net.IP{net.ParseIP("192.168.1.20")},
	}

	left := removeAddresses([]string{"192.168.1.20", "fe80::1"}, entry)
	assert.Equal(t, []string{"fe80::1"}, left)
}

func TestDeviceIdentity(t *testing.T) {
	d := &Device{Service: Service{
		InstanceName: "Root Alpha",
		Host:         "bridge.local",
		Port:         7332,
		Addresses:    []string{"192.168.1.20"},
	}}

	assert.Equal(t, "192.168.1.20:7332", d.ID())
	assert.Equal(t, "Root Alpha", d.Name())
}
