package driver

import (
	"strconv"
	"strings"
)

// DeviceNumber identifies an on-robot subsystem in the wire protocol.
type DeviceNumber uint8

// Subsystem device numbers.
const (
	DeviceGeneral     DeviceNumber = 0
	DeviceMotors      DeviceNumber = 1
	DeviceMarker      DeviceNumber = 2
	DeviceLED         DeviceNumber = 3
	DeviceColorSensor DeviceNumber = 4
	DeviceSound       DeviceNumber = 5
	DeviceBumpers     DeviceNumber = 12
	DeviceLight       DeviceNumber = 13
	DeviceBattery     DeviceNumber = 14
	DeviceTouch       DeviceNumber = 17
	DeviceCliff       DeviceNumber = 20
)

// DeviceSet is a bitmask of subsystem device numbers, used to toggle which
// subsystems emit events. The zero value is the empty set.
type DeviceSet uint32

// AllDevices contains every event-emitting subsystem.
const AllDevices DeviceSet = 1<<DeviceMotors |
	1<<DeviceMarker |
	1<<DeviceColorSensor |
	1<<DeviceSound |
	1<<DeviceBumpers |
	1<<DeviceLight |
	1<<DeviceBattery |
	1<<DeviceTouch |
	1<<DeviceCliff

// Devices builds a DeviceSet from individual device numbers.
func Devices(nums ...DeviceNumber) DeviceSet {
	var s DeviceSet
	for _, n := range nums {
		s |= 1 << n
	}
	return s
}

// Has reports whether the set contains the given device.
func (s DeviceSet) Has(n DeviceNumber) bool {
	return s&(1<<n) != 0
}

// With returns the set with the given devices added.
func (s DeviceSet) With(nums ...DeviceNumber) DeviceSet {
	return s | Devices(nums...)
}

// Without returns the set with the given devices removed.
func (s DeviceSet) Without(nums ...DeviceNumber) DeviceSet {
	return s &^ Devices(nums...)
}

// Numbers returns the device numbers in the set in ascending order.
func (s DeviceSet) Numbers() []DeviceNumber {
	var nums []DeviceNumber
	for n := DeviceNumber(0); n < 32; n++ {
		if s.Has(n) {
			nums = append(nums, n)
		}
	}
	return nums
}

// String returns the set as a comma-separated list of device numbers.
func (s DeviceSet) String() string {
	nums := s.Numbers()
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.Itoa(int(n))
	}
	return "{" + strings.Join(parts, ",") + "}"
}
