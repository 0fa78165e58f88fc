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
	"github.com/entwanne/root-robot/pkg/robot"
)

func TestOpenClaimsDeviceExclusively(t *testing.T) {
	ctx := context.Background()
	dev := sim.NewDevice("sim-0", "Root Alpha")

	r, err := robot.Open(ctx, dev)
	require.NoError(t, err)

	// A second session on the same device must be refused.
	_, err = robot.Open(ctx, dev)
	var connErr *driver.ConnectionError
	require.ErrorAs(t, err, &connErr)
	require.ErrorIs(t, err, driver.ErrBusy)

	// Closing releases the claim.
	require.NoError(t, r.Close())
	r2, err := robot.Open(ctx, dev)
	require.NoError(t, err)
	require.NoError(t, r2.Close())
}

func TestOpenFailureConstructsNothing(t *testing.T) {
	dev := sim.NewDevice("sim-0", "Root Alpha")
	dev.OpenErr = errors.New("radio unreachable")

	r, err := robot.Open(context.Background(), dev)
	require.Error(t, err)
	require.Nil(t, r)

	var connErr *driver.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Nil(t, dev.Current())
}

func TestCloseIsIdempotent(t *testing.T) {
	ctx := context.Background()
	dev := sim.NewDevice("sim-0", "Root Alpha")

	r, err := robot.Open(ctx, dev)
	require.NoError(t, err)

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	assert.Nil(t, dev.Current(), "device still claimed after close")
}

func TestQueries(t *testing.T) {
	ctx := context.Background()
	dev := sim.NewDevice("sim-0", "Root Alpha")

	r, err := robot.Open(ctx, dev)
	require.NoError(t, err)
	defer r.Close()

	name, err := r.Name(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Root Alpha", name)

	require.NoError(t, r.SetName(ctx, "Root Beta"))
	name, err = r.Name(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Root Beta", name)

	serial, err := r.SerialNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "RT0123456789", serial)

	sku, err := r.SKU(ctx)
	require.NoError(t, err)
	assert.Equal(t, "RT001", sku)

	battery, err := r.BatteryLevel(ctx)
	require.NoError(t, err)
	assert.Equal(t, driver.BatteryLevel{Voltage: 4100, Percent: 87}, battery)

	version, err := r.Version(ctx, driver.BoardMain)
	require.NoError(t, err)
	assert.Equal(t, "1.4", version)

	version, err = r.Version(ctx, driver.BoardColor)
	require.NoError(t, err)
	assert.Equal(t, "1.2", version)
}

func TestMotorCommands(t *testing.T) {
	ctx := context.Background()
	dev := sim.NewDevice("sim-0", "Root Alpha")

	r, err := robot.Open(ctx, dev)
	require.NoError(t, err)
	defer r.Close()
	drv := dev.Current()

	require.NoError(t, r.Motor.SetSpeed(ctx, 100, -50))
	assert.Equal(t, "set motor speed 100 -50", drv.LastCommand())

	require.NoError(t, r.Motor.SetLeftSpeed(ctx, 30))
	assert.Equal(t, "set left motor speed 30", drv.LastCommand())

	require.NoError(t, r.Motor.SetRightSpeed(ctx, -30))
	assert.Equal(t, "set right motor speed -30", drv.LastCommand())

	require.NoError(t, r.Motor.Drive(ctx, 150, true))
	assert.Equal(t, "drive distance 150 wait=true", drv.LastCommand())

	require.NoError(t, r.Motor.Rotate(ctx, -900, false))
	assert.Equal(t, "rotate angle -900 wait=false", drv.LastCommand())

	require.NoError(t, r.Motor.DriveArc(ctx, 3600, 100, true))
	assert.Equal(t, "drive arc 3600 100 wait=true", drv.LastCommand())

	require.NoError(t, r.Motor.EnableGravityCompensation(ctx, 800))
	assert.Equal(t, "set gravity compensation 1 800", drv.LastCommand())

	require.NoError(t, r.Motor.EnableGravityCompensationOnMarker(ctx, robot.DefaultGravityAmount))
	assert.Equal(t, "set gravity compensation 2 500", drv.LastCommand())

	require.NoError(t, r.Motor.DisableGravityCompensation(ctx))
	assert.Equal(t, "set gravity compensation 0 0", drv.LastCommand())

	require.NoError(t, r.Cancel(ctx))
	assert.Equal(t, "cancel", drv.LastCommand())
}

func TestToolCommands(t *testing.T) {
	ctx := context.Background()
	dev := sim.NewDevice("sim-0", "Root Alpha")

	r, err := robot.Open(ctx, dev)
	require.NoError(t, err)
	defer r.Close()
	drv := dev.Current()

	require.NoError(t, r.Marker.Down(ctx, true))
	assert.Equal(t, "set marker eraser 1 wait=true", drv.LastCommand())

	require.NoError(t, r.Marker.Up(ctx, false))
	assert.Equal(t, "set marker eraser 0 wait=false", drv.LastCommand())

	require.NoError(t, r.Eraser.Down(ctx, true))
	assert.Equal(t, "set marker eraser 2 wait=true", drv.LastCommand())

	require.NoError(t, r.Eraser.Up(ctx, true))
	assert.Equal(t, "set marker eraser 0 wait=true", drv.LastCommand())
}

func TestLEDRemembersLastColor(t *testing.T) {
	ctx := context.Background()
	dev := sim.NewDevice("sim-0", "Root Alpha")

	r, err := robot.Open(ctx, dev)
	require.NoError(t, err)
	defer r.Close()
	drv := dev.Current()

	red := robot.RGB{R: 255}
	require.NoError(t, r.LED.On(ctx, red))
	assert.Equal(t, "set led animation 1 255 0 0", drv.LastCommand())
	assert.Equal(t, red, r.LED.Color())

	// Mode-only calls re-send the stored color.
	require.NoError(t, r.LED.Off(ctx))
	assert.Equal(t, "set led animation 0 255 0 0", drv.LastCommand())

	require.NoError(t, r.LED.Blink(ctx))
	assert.Equal(t, "set led animation 2 255 0 0", drv.LastCommand())

	require.NoError(t, r.LED.Spin(ctx))
	assert.Equal(t, "set led animation 3 255 0 0", drv.LastCommand())
	assert.Equal(t, red, r.LED.Color())
}

func TestLEDKeepsStateOnFailure(t *testing.T) {
	ctx := context.Background()
	dev := sim.NewDevice("sim-0", "Root Alpha")

	r, err := robot.Open(ctx, dev)
	require.NoError(t, err)
	defer r.Close()
	drv := dev.Current()

	red := robot.RGB{R: 255}
	require.NoError(t, r.LED.On(ctx, red))

	drv.SetRoundTripError(errors.New("link down"))
	require.Error(t, r.LED.Blink(ctx, robot.RGB{G: 255}))

	// The failed update must not change the stored state.
	assert.Equal(t, red, r.LED.Color())
	assert.Equal(t, driver.LEDOn, r.LED.Animation())
}

func TestSoundCommands(t *testing.T) {
	ctx := context.Background()
	dev := sim.NewDevice("sim-0", "Root Alpha")

	r, err := robot.Open(ctx, dev)
	require.NoError(t, err)
	defer r.Close()
	drv := dev.Current()

	require.NoError(t, r.Sound.Play(ctx, 440, 250*time.Millisecond))
	assert.Equal(t, "play note 440 250ms", drv.LastCommand())

	// A zero duration plays the default length.
	require.NoError(t, r.Sound.Play(ctx, 880, 0))
	assert.Equal(t, "play note 880 1s", drv.LastCommand())

	require.NoError(t, r.Sound.Stop(ctx))
	assert.Equal(t, "stop note", drv.LastCommand())

	require.NoError(t, r.Sound.Say(ctx, "hi there", true))
	assert.Equal(t, `say "hi there" wait=true`, drv.LastCommand())
}

func TestCommandErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	dev := sim.NewDevice("sim-0", "Root Alpha")

	r, err := robot.Open(ctx, dev)
	require.NoError(t, err)
	defer r.Close()

	cause := errors.New("link down")
	dev.Current().SetRoundTripError(cause)

	err = r.Motor.Drive(ctx, 100, false)
	var commErr *driver.CommunicationError
	require.ErrorAs(t, err, &commErr)
	require.ErrorIs(t, err, cause)
}
