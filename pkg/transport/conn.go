package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/entwanne/root-robot/pkg/driver"
	"github.com/entwanne/root-robot/pkg/log"
	"github.com/entwanne/root-robot/pkg/protocol"
)

// DefaultRequestTimeout bounds one request/response round-trip.
const DefaultRequestTimeout = 3 * time.Second

// Config configures a packet connection.
type Config struct {
	// RequestTimeout bounds each round-trip. Zero means
	// DefaultRequestTimeout.
	RequestTimeout time.Duration

	// Logger receives packet-level protocol events. Nil disables.
	Logger log.Logger

	// SessionID correlates log events. Optional.
	SessionID string

	// DeviceID identifies the robot in log events. Optional.
	DeviceID string
}

// Conn speaks the Root packet protocol over a byte link. It implements
// driver.Driver and is safe for concurrent use; requests issued sequentially
// by one caller are written in issuance order.
type Conn struct {
	rw      io.ReadWriteCloser
	timeout time.Duration
	logger  log.Logger
	session string
	device  string

	writeMu sync.Mutex // serializes packet writes

	mu       sync.Mutex
	nextID   uint8
	inflight map[requestKey]chan protocol.Packet
	closed   bool
	readErr  error

	closeOnce sync.Once

	events *eventQueue
}

type requestKey struct {
	device  uint8
	command uint8
	id      uint8
}

// NewConn wraps a byte link carrying raw 20-byte packets. The read pump
// starts immediately.
func NewConn(rw io.ReadWriteCloser, cfg Config) *Conn {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NoopLogger{}
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	c := &Conn{
		rw:       rw,
		timeout:  timeout,
		logger:   logger,
		session:  cfg.SessionID,
		device:   cfg.DeviceID,
		inflight: make(map[requestKey]chan protocol.Packet),
		events:   newEventQueue(),
	}

	go c.readLoop()
	return c
}

// readLoop is the sole reader of the link. It decodes frames, routes
// responses to their waiters and surfaces event packets.
func (c *Conn) readLoop() {
	var buf [protocol.PacketSize]byte
	for {
		if _, err := io.ReadFull(c.rw, buf[:]); err != nil {
			c.shutdown(err)
			return
		}

		p, err := protocol.Decode(buf[:])
		if err != nil {
			// Corrupt frame mid-stream means lost sync; the link
			// cannot recover.
			c.shutdown(err)
			return
		}

		c.logPacket(log.DirectionIn, p)

		if protocol.IsEvent(p.Device, p.Command) {
			ev, err := protocol.DecodeEvent(p)
			if err != nil {
				c.logger.Log(log.NewErrorEvent(c.session, "decode event", err))
				continue
			}
			c.events.push(ev)
			continue
		}

		key := requestKey{p.Device, p.Command, p.ID}
		c.mu.Lock()
		waiter, ok := c.inflight[key]
		if ok {
			delete(c.inflight, key)
		}
		c.mu.Unlock()

		if ok {
			waiter <- p
			continue
		}

		// A completion whose request did not wait becomes an event for
		// the session's stream.
		if done, isCompletion := protocol.Completion(p.Device, p.Command); isCompletion {
			c.events.push(done)
			continue
		}

		c.logger.Log(log.NewErrorEvent(c.session, "unmatched response",
			fmt.Errorf("device %d command %d id %d", p.Device, p.Command, p.ID)))
	}
}

// shutdown finalizes the connection after the read pump stops.
func (c *Conn) shutdown(err error) {
	c.mu.Lock()
	if !c.closed && !errors.Is(err, io.EOF) {
		c.readErr = err
	}
	c.closed = true
	waiters := c.inflight
	c.inflight = make(map[requestKey]chan protocol.Packet)
	c.mu.Unlock()

	for _, waiter := range waiters {
		close(waiter)
	}
	c.events.close()
}

// send writes one packet, assigning it a fresh id. When waitResponse is set
// the response packet is awaited, bounded by ctx and the request timeout.
func (c *Conn) send(ctx context.Context, op string, p protocol.Packet, waitResponse bool) (protocol.Packet, error) {
	return c.sendTimeout(ctx, op, p, waitResponse, c.timeout)
}

// sendNoTimeout awaits the response bounded only by ctx. Used for waited
// motion commands, whose completion takes as long as the motion itself.
func (c *Conn) sendNoTimeout(ctx context.Context, op string, p protocol.Packet) (protocol.Packet, error) {
	return c.sendTimeout(ctx, op, p, true, 0)
}

func (c *Conn) sendTimeout(ctx context.Context, op string, p protocol.Packet, waitResponse bool, timeout time.Duration) (protocol.Packet, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return protocol.Packet{}, &driver.CommunicationError{Op: op, Err: driver.ErrClosed}
	}
	c.nextID++
	p.ID = c.nextID

	var waiter chan protocol.Packet
	key := requestKey{p.Device, p.Command, p.ID}
	if waitResponse {
		waiter = make(chan protocol.Packet, 1)
		c.inflight[key] = waiter
	}
	c.mu.Unlock()

	buf := p.Encode()
	c.writeMu.Lock()
	_, err := c.rw.Write(buf[:])
	c.writeMu.Unlock()
	if err != nil {
		c.forget(key)
		return protocol.Packet{}, &driver.CommunicationError{Op: op, Err: err}
	}

	c.logPacket(log.DirectionOut, p)

	if !waitResponse {
		return protocol.Packet{}, nil
	}

	var timeoutC <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutC = timer.C
	}

	select {
	case resp, ok := <-waiter:
		if !ok {
			return protocol.Packet{}, &driver.CommunicationError{Op: op, Err: driver.ErrClosed}
		}
		return resp, nil
	case <-timeoutC:
		c.forget(key)
		return protocol.Packet{}, &driver.CommunicationError{Op: op, Err: driver.ErrTimeout}
	case <-ctx.Done():
		c.forget(key)
		return protocol.Packet{}, &driver.CommunicationError{Op: op, Err: ctx.Err()}
	}
}

// forget drops an inflight registration after a failed round-trip.
func (c *Conn) forget(key requestKey) {
	c.mu.Lock()
	delete(c.inflight, key)
	c.mu.Unlock()
}

func (c *Conn) logPacket(dir log.Direction, p protocol.Packet) {
	ev := log.NewPacketEvent(c.session, dir, p.Device, p.Command, p.ID, protocol.PacketSize)
	ev.DeviceID = c.device
	c.logger.Log(ev)
}

// Events implements driver.Driver.
func (c *Conn) Events() <-chan driver.Event {
	return c.events.out
}

// Err implements driver.Driver.
func (c *Conn) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readErr
}

// Close implements driver.Driver. A disconnect notice is sent best-effort
// before the link is torn down; Close never fails on an already-closed
// connection.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		alreadyClosed := c.closed
		c.closed = true
		c.mu.Unlock()

		if !alreadyClosed {
			p := protocol.Disconnect()
			c.mu.Lock()
			c.nextID++
			p.ID = c.nextID
			c.mu.Unlock()

			buf := p.Encode()
			c.writeMu.Lock()
			_, _ = c.rw.Write(buf[:])
			c.writeMu.Unlock()
		}

		_ = c.rw.Close()
	})
	return nil
}
