package deck

import (
	"errors"
	"fmt"
)

var (
	// ErrConcurrentOperation indicates a lane already has a request in flight.
	ErrConcurrentOperation = errors.New("operation ongoing")
	// ErrCapabilityUnsupported indicates the deck doesn't support the operation.
	ErrCapabilityUnsupported = errors.New("operation not supported by deck")
	// ErrNotReady indicates the deck is not started.
	ErrNotReady = errors.New("deck not ready")
	// ErrShortInfoSection indicates the info section payload is truncated.
	ErrShortInfoSection = errors.New("info section too short")
	// ErrTransportFailure indicates the transport failed a request.
	ErrTransportFailure = errors.New("transport failure")
)

// LaneBusyError is returned when a request hits a busy lane.
type LaneBusyError struct {
	Lane Lane
}

// Error implements error.
func (e *LaneBusyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Lane, ErrConcurrentOperation)
}

// Unwrap returns ErrConcurrentOperation.
func (e *LaneBusyError) Unwrap() error {
	return ErrConcurrentOperation
}

// CapabilityError is returned when a deck lacks a required capability.
type CapabilityError struct {
	Deck string
	Op   string
}

// Error implements error.
func (e *CapabilityError) Error() string {
	return fmt.Sprintf("deck %q does not support %s operations", e.Deck, e.Op)
}

// Unwrap returns ErrCapabilityUnsupported.
func (e *CapabilityError) Unwrap() error {
	return ErrCapabilityUnsupported
}

// VersionError indicates an unsupported info section version.
type VersionError struct {
	Version byte
}

// Error implements error.
func (e *VersionError) Error() string {
	return fmt.Sprintf("info section version %d not supported", e.Version)
}

// TransportError reports a failed transport request.
// Address is relative to the deck base address, except for queries.
type TransportError struct {
	Op      string
	Address uint32
}

// Error implements error.
func (e *TransportError) Error() string {
	return fmt.Sprintf("deck memory %s failed, addr: 0x%x", e.Op, e.Address)
}

// Unwrap returns ErrTransportFailure.
func (e *TransportError) Unwrap() error {
	return ErrTransportFailure
}
