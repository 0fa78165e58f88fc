package driver

import (
	"errors"
	"fmt"
)

// Boundary errors.
var (
	// ErrClosed is returned for operations on a closed connection.
	ErrClosed = errors.New("connection closed")

	// ErrTimeout is returned when a round-trip timed out.
	ErrTimeout = errors.New("request timed out")

	// ErrBusy is returned when the device is already claimed.
	ErrBusy = errors.New("device already claimed")
)

// DiscoveryError reports a failed device scan.
type DiscoveryError struct {
	Err error
}

// Error implements error.
func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discovery failed: %v", e.Err)
}

// Unwrap returns the underlying transport fault.
func (e *DiscoveryError) Unwrap() error { return e.Err }

// ConnectionError reports a failed connection attempt.
type ConnectionError struct {
	// Device is the identifier of the device being opened.
	Device string

	Err error
}

// Error implements error.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect %s: %v", e.Device, e.Err)
}

// Unwrap returns the underlying transport fault.
func (e *ConnectionError) Unwrap() error { return e.Err }

// CommunicationError reports a failed command or query round-trip.
type CommunicationError struct {
	// Op names the request that failed (e.g. "get battery level").
	Op string

	Err error
}

// Error implements error.
func (e *CommunicationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying transport fault.
func (e *CommunicationError) Unwrap() error { return e.Err }

// StreamError reports that the live event feed broke.
type StreamError struct {
	Err error
}

// Error implements error.
func (e *StreamError) Error() string {
	return fmt.Sprintf("event stream: %v", e.Err)
}

// Unwrap returns the underlying transport fault.
func (e *StreamError) Unwrap() error { return e.Err }
