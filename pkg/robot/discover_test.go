package robot_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entwanne/root-robot/internal/testharness/sim"
	"github.com/entwanne/root-robot/pkg/driver"
	"github.com/entwanne/root-robot/pkg/events"
	"github.com/entwanne/root-robot/pkg/robot"
)

// fakeTransport returns a scripted scan result and records the timeout it
// was asked to honor.
type fakeTransport struct {
	devices []driver.Device
	err     error

	gotTimeout time.Duration
}

func (t *fakeTransport) Discover(ctx context.Context, timeout time.Duration) ([]driver.Device, error) {
	t.gotTimeout = timeout
	if t.err != nil {
		return nil, t.err
	}
	return t.devices, nil
}

func TestDiscoverDefaultsTimeout(t *testing.T) {
	ft := &fakeTransport{}

	_, err := robot.Discover(context.Background(), ft, 0)
	require.NoError(t, err)
	assert.Equal(t, robot.DefaultDiscoveryTimeout, ft.gotTimeout)

	_, err = robot.Discover(context.Background(), ft, 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, ft.gotTimeout)
}

func TestDiscoverPropagatesTransportFault(t *testing.T) {
	scanErr := &driver.DiscoveryError{Err: errors.New("radio off")}
	ft := &fakeTransport{err: scanErr}

	_, err := robot.Discover(context.Background(), ft, time.Second)
	require.Error(t, err)

	var de *driver.DiscoveryError
	assert.ErrorAs(t, err, &de)
}

func TestFirstFailsOnEmptyScan(t *testing.T) {
	ft := &fakeTransport{}

	_, err := robot.First(context.Background(), ft, time.Second, robot.Options{})
	assert.ErrorIs(t, err, robot.ErrNoDevices)
}

func TestFirstOpensFirstDevice(t *testing.T) {
	dev0 := sim.NewDevice("sim-0", "Root Alpha")
	dev1 := sim.NewDevice("sim-1", "Root Beta")
	ft := &fakeTransport{devices: []driver.Device{dev0, dev1}}

	r, err := robot.First(context.Background(), ft, time.Second, robot.Options{})
	require.NoError(t, err)
	defer r.Close()

	assert.NotNil(t, dev0.Current(), "first device claimed")
	assert.Nil(t, dev1.Current(), "second device untouched")
}

func TestRunDispatchesUntilCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dev := sim.NewDevice("sim-0", "Root Alpha")
	var drv *sim.Robot
	dev.Configure = func(r *sim.Robot) {
		drv = r
		r.Emit(driver.BumperEvent{Left: true})
	}
	ft := &fakeTransport{devices: []driver.Device{dev}}

	seen := make(chan driver.Event, 1)
	callbacks := map[driver.EventKind]events.Handler{
		driver.KindBumper: func(ev driver.Event) error {
			seen <- ev
			cancel()
			return nil
		},
	}

	err := robot.Run(ctx, ft, time.Second, robot.Options{}, callbacks)
	require.NoError(t, err, "cancellation is a clean end")

	select {
	case ev := <-seen:
		bumper, ok := ev.(driver.BumperEvent)
		require.True(t, ok)
		assert.True(t, bumper.Left)
	default:
		t.Fatal("callback never fired")
	}

	assert.Nil(t, dev.Current(), "session released on exit")
	require.NotNil(t, drv)
	assert.Contains(t, drv.Commands(), "enable events "+driver.AllDevices.String())
}
