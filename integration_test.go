package rootrobot_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entwanne/root-robot/internal/testharness/sim"
	"github.com/entwanne/root-robot/pkg/driver"
	"github.com/entwanne/root-robot/pkg/robot"
)

// simTransport discovers a fixed set of simulated robots.
type simTransport struct {
	devices []driver.Device
}

func (t *simTransport) Discover(ctx context.Context, timeout time.Duration) ([]driver.Device, error) {
	return t.devices, nil
}

// TestE2E_SessionLifecycle walks a full session: discover, connect, query,
// drive, read colors, watch events, disconnect.
func TestE2E_SessionLifecycle(t *testing.T) {
	ctx := context.Background()

	dev := sim.NewDevice("sim-0", "Root Alpha")
	tr := &simTransport{devices: []driver.Device{dev}}

	devices, err := robot.Discover(ctx, tr, time.Second)
	require.NoError(t, err)
	require.Len(t, devices, 1)

	r, err := robot.Open(ctx, devices[0])
	require.NoError(t, err)
	drv := dev.Current()
	require.NotNil(t, drv)

	// Identity and status queries.
	name, err := r.Name(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Root Alpha", name)

	battery, err := r.BatteryLevel(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint8(87), battery.Percent)

	// The device is claimed for the session's lifetime.
	_, err = robot.Open(ctx, dev)
	assert.ErrorIs(t, err, driver.ErrBusy)

	// Actuators.
	require.NoError(t, r.Motor.Drive(ctx, 150, true))
	require.NoError(t, r.Marker.Down(ctx, true))
	require.NoError(t, r.LED.On(ctx, robot.RGB{G: 255}))
	require.NoError(t, r.Sound.Play(ctx, 440, 250*time.Millisecond))

	commands := drv.Commands()
	assert.Contains(t, commands, "drive distance 150 wait=true")
	assert.Contains(t, commands, "set marker eraser 1 wait=true")
	assert.Contains(t, commands, "set led animation 1 0 255 0")
	assert.Contains(t, commands, "play note 440 250ms")

	// Color sensing.
	colors, err := r.Color.ReadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, colors, robot.PositionCount)

	// Event watching with callbacks.
	require.NoError(t, r.Events.EnableAll(ctx))

	seen := make(chan driver.Event, 4)
	r.Events.SetCallback(driver.KindBumper, func(ev driver.Event) error {
		seen <- ev
		return nil
	})
	task := r.Events.ProcessAsync(ctx, true)

	drv.Emit(driver.BumperEvent{Timestamp: 100, Right: true})

	select {
	case ev := <-seen:
		bumper, ok := ev.(driver.BumperEvent)
		require.True(t, ok)
		assert.True(t, bumper.Right)
	case <-time.After(time.Second):
		t.Fatal("bumper event never dispatched")
	}

	task.Stop()
	require.NoError(t, task.Wait())

	// Disconnect releases the claim; the same device can be reopened.
	require.NoError(t, r.Close())
	assert.Nil(t, dev.Current())

	r2, err := robot.Open(ctx, dev)
	require.NoError(t, err)
	require.NoError(t, r2.Close())
}
