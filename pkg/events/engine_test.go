package events

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entwanne/root-robot/internal/testharness/sim"
	"github.com/entwanne/root-robot/pkg/driver"
)

func bumper(ts uint32) driver.BumperEvent {
	return driver.BumperEvent{Timestamp: ts, Left: true}
}

func touch(ts uint32) driver.TouchEvent {
	return driver.TouchEvent{Timestamp: ts, FrontLeft: true}
}

// waitBuffered blocks until the pump has moved n events into the queue.
func waitBuffered(t *testing.T, e *Engine, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return e.buffered() >= n
	}, time.Second, time.Millisecond)
}

func TestListenDeliversInOrder(t *testing.T) {
	r := sim.New()
	defer r.Close()
	e := New(r)

	const count = 100
	for i := 0; i < count; i++ {
		r.Emit(bumper(uint32(i)))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := e.Listen(ctx)
	for i := 0; i < count; i++ {
		ev := <-s.C
		require.Equal(t, bumper(uint32(i)), ev, "event %d out of order", i)
	}

	cancel()
	for range s.C {
		t.Fatal("event delivered after cancel")
	}
	require.NoError(t, s.Err())
}

func TestListenInterleavesKindsInEmissionOrder(t *testing.T) {
	r := sim.New()
	defer r.Close()
	e := New(r)

	r.Emit(bumper(1))
	r.Emit(touch(2))
	r.Emit(bumper(3))
	r.Emit(touch(4))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := e.Listen(ctx)
	got := []driver.Event{<-s.C, <-s.C, <-s.C, <-s.C}

	want := []driver.Event{bumper(1), touch(2), bumper(3), touch(4)}
	require.Equal(t, want, got)
}

func TestDrainIsBoundedBySnapshot(t *testing.T) {
	r := sim.New()
	defer r.Close()
	e := New(r)

	r.Emit(bumper(1))
	r.Emit(bumper(2))
	r.Emit(bumper(3))
	waitBuffered(t, e, 3)

	s := e.Drain(context.Background())

	var got []driver.Event
	for ev := range s.C {
		got = append(got, ev)
		// Arrivals during the drain must not extend it.
		r.Emit(bumper(100))
	}

	require.Len(t, got, 3)
	require.Equal(t, []driver.Event{bumper(1), bumper(2), bumper(3)}, got)
	require.NoError(t, s.Err())
}

func TestDrainOnEmptyQueueEndsImmediately(t *testing.T) {
	r := sim.New()
	defer r.Close()
	e := New(r)

	s := e.Drain(context.Background())
	for range s.C {
		t.Fatal("unexpected event")
	}
	require.NoError(t, s.Err())
}

func TestEventsSurviveBetweenConsumptions(t *testing.T) {
	r := sim.New()
	defer r.Close()
	e := New(r)

	r.Emit(bumper(1))
	r.Emit(bumper(2))
	waitBuffered(t, e, 2)

	// First drain consumes the backlog.
	require.NoError(t, e.Process(context.Background(), false))

	// New arrivals buffer until the next consumption pass.
	r.Emit(bumper(3))
	waitBuffered(t, e, 1)

	s := e.Drain(context.Background())
	var got []driver.Event
	for ev := range s.C {
		got = append(got, ev)
	}
	require.Equal(t, []driver.Event{bumper(3)}, got)
}

func TestCallbacksDispatchDuringProcessing(t *testing.T) {
	r := sim.New()
	defer r.Close()
	e := New(r)

	var mu sync.Mutex
	var seen []uint32
	e.SetCallback(driver.KindBumper, func(ev driver.Event) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, ev.(driver.BumperEvent).Timestamp)
		return nil
	})

	const count = 20
	for i := 0; i < count; i++ {
		r.Emit(bumper(uint32(i)))
	}
	waitBuffered(t, e, count)

	require.NoError(t, e.Process(context.Background(), false))

	// Dispatch is fire-and-forget; wait for the chain to finish.
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == count
	}, time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	for i, ts := range seen {
		require.Equal(t, uint32(i), ts, "callback %d out of order", i)
	}
}

func TestCallbackRegistrationIsNotRetroactive(t *testing.T) {
	r := sim.New()
	defer r.Close()
	e := New(r)

	r.Emit(bumper(1))
	waitBuffered(t, e, 1)
	require.NoError(t, e.Process(context.Background(), false))

	var mu sync.Mutex
	var seen []uint32
	e.SetCallback(driver.KindBumper, func(ev driver.Event) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, ev.(driver.BumperEvent).Timestamp)
		return nil
	})

	r.Emit(bumper(2))
	waitBuffered(t, e, 1)
	require.NoError(t, e.Process(context.Background(), false))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 1
	}, time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []uint32{2}, seen, "handler saw events emitted before registration")
}

func TestFailingCallbackDoesNotDisruptDelivery(t *testing.T) {
	r := sim.New()
	defer r.Close()
	e := New(r)

	e.SetCallback(driver.KindBumper, func(driver.Event) error {
		return errors.New("handler failure")
	})
	e.SetCallback(driver.KindTouch, func(driver.Event) error {
		panic("handler panic")
	})

	r.Emit(bumper(1))
	r.Emit(touch(2))
	r.Emit(bumper(3))
	waitBuffered(t, e, 3)

	s := e.Drain(context.Background())
	var got []driver.Event
	for ev := range s.C {
		got = append(got, ev)
	}

	require.Len(t, got, 3)
	require.NoError(t, s.Err())
}

func TestStreamFaultSurfacesOnStreamAndEngine(t *testing.T) {
	r := sim.New()
	e := New(r)

	r.Emit(bumper(1))
	r.FailStream(io.ErrUnexpectedEOF)

	s := e.Listen(context.Background())

	var got []driver.Event
	for ev := range s.C {
		got = append(got, ev)
	}
	require.Equal(t, []driver.Event{bumper(1)}, got, "buffered event lost on fault")

	var streamErr *driver.StreamError
	require.ErrorAs(t, s.Err(), &streamErr)
	require.ErrorIs(t, s.Err(), io.ErrUnexpectedEOF)
	require.ErrorIs(t, e.Err(), io.ErrUnexpectedEOF)
}

func TestCleanCloseEndsListenWithoutError(t *testing.T) {
	r := sim.New()
	e := New(r)

	s := e.Listen(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range s.C {
		}
	}()

	require.NoError(t, r.Close())
	<-done

	require.NoError(t, s.Err())
	require.NoError(t, e.Err())
}

func TestWaitBlocksForInFlightCallbacks(t *testing.T) {
	r := sim.New()
	e := New(r)

	entered := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool
	e.SetCallback(driver.KindBumper, func(driver.Event) error {
		close(entered)
		<-release
		finished.Store(true)
		return nil
	})

	r.Emit(bumper(1))
	waitBuffered(t, e, 1)
	require.NoError(t, e.Process(context.Background(), false))
	<-entered

	require.NoError(t, r.Close())

	waited := make(chan struct{})
	go func() {
		defer close(waited)
		e.Wait()
	}()

	select {
	case <-waited:
		t.Fatal("Wait returned while a callback was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-waited:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after the callback finished")
	}
	require.True(t, finished.Load())
}

func TestWaitReturnsImmediatelyAfterCleanClose(t *testing.T) {
	r := sim.New()
	e := New(r)

	require.NoError(t, r.Close())
	e.Wait()
	require.NoError(t, e.Err())
}

func TestProcessFollowReturnsNilOnCancel(t *testing.T) {
	r := sim.New()
	defer r.Close()
	e := New(r)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Process(ctx, true)
	}()

	r.Emit(bumper(1))
	time.Sleep(10 * time.Millisecond)
	cancel()

	require.NoError(t, <-errCh)
}

func TestProcessAsyncStop(t *testing.T) {
	r := sim.New()
	defer r.Close()
	e := New(r)

	task := e.ProcessAsync(context.Background(), true)

	assert.NoError(t, task.Err(), "Err before completion")
	task.Stop()
	require.NoError(t, task.Wait())

	select {
	case <-task.Done():
	default:
		t.Fatal("Done not closed after Wait")
	}
}

func TestProcessAsyncReportsStreamFault(t *testing.T) {
	r := sim.New()
	e := New(r)

	task := e.ProcessAsync(context.Background(), true)

	r.FailStream(io.ErrUnexpectedEOF)
	require.ErrorIs(t, task.Wait(), io.ErrUnexpectedEOF)
}

func TestEnableDisablePassThrough(t *testing.T) {
	r := sim.New()
	defer r.Close()
	e := New(r)
	ctx := context.Background()

	require.NoError(t, e.Enable(ctx, driver.Devices(driver.DeviceBumpers)))
	enabled, err := e.Enabled(ctx)
	require.NoError(t, err)
	assert.True(t, enabled.Has(driver.DeviceBumpers))

	require.NoError(t, e.EnableAll(ctx))
	enabled, err = e.Enabled(ctx)
	require.NoError(t, err)
	assert.Equal(t, driver.AllDevices, enabled)

	// DisableAll must actually clear the set.
	require.NoError(t, e.DisableAll(ctx))
	enabled, err = e.Enabled(ctx)
	require.NoError(t, err)
	assert.Equal(t, driver.DeviceSet(0), enabled)
}
