package driver

import (
	"testing"
)

func TestDeviceSetOperations(t *testing.T) {
	s := Devices(DeviceMotors, DeviceBumpers)

	if !s.Has(DeviceMotors) || !s.Has(DeviceBumpers) {
		t.Fatalf("missing members in %v", s)
	}
	if s.Has(DeviceTouch) {
		t.Fatalf("unexpected member in %v", s)
	}

	s = s.With(DeviceTouch)
	if !s.Has(DeviceTouch) {
		t.Fatalf("With did not add touch: %v", s)
	}

	s = s.Without(DeviceMotors)
	if s.Has(DeviceMotors) {
		t.Fatalf("Without did not remove motors: %v", s)
	}
}

func TestDeviceSetNumbersAscending(t *testing.T) {
	s := Devices(DeviceCliff, DeviceGeneral, DeviceBattery)

	nums := s.Numbers()
	want := []DeviceNumber{DeviceGeneral, DeviceBattery, DeviceCliff}
	if len(nums) != len(want) {
		t.Fatalf("got %v, want %v", nums, want)
	}
	for i := range want {
		if nums[i] != want[i] {
			t.Fatalf("got %v, want %v", nums, want)
		}
	}
}

func TestAllDevicesCoversEventSources(t *testing.T) {
	for _, n := range []DeviceNumber{
		DeviceMotors, DeviceColorSensor, DeviceBumpers,
		DeviceLight, DeviceBattery, DeviceTouch, DeviceCliff,
	} {
		if !AllDevices.Has(n) {
			t.Errorf("AllDevices missing subsystem %d", n)
		}
	}
}
