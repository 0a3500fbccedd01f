package smbus

import (
	"fmt"

	"github.com/pkg/errors"
)

// Transaction names used in TransportError.
const (
	OpReadByte   = "read byte"
	OpReadRange  = "read range"
	OpReadBlock  = "read block"
	OpWriteByte  = "write byte"
	OpWriteBlock = "write block"
)

var (
	// ErrUnsupported is returned when the controller is not a supported SMBus implementation.
	ErrUnsupported = errors.New("SMBus controller is not supported")
	// ErrNoAck is the usual cause of a TransportError: nothing answered at the address.
	ErrNoAck = errors.New("device did not acknowledge")
)

// TransportError is a failed transaction at the protocol level: no acknowledge, lost
// arbitration, malformed block length, short transfer.
type TransportError struct {
	Op      string
	Address Address
	Offset  Offset
	Err     error
}

// NewTransportError wraps err as a failure of op at addr/off.
func NewTransportError(op string, addr Address, off Offset, err error) error {
	return &TransportError{Op: op, Address: addr, Offset: off, Err: err}
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("smbus %s: device %s offset %s: %v", e.Op, e.Address, e.Offset, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError returns true if err is or wraps a TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// ConstructionError means a controller could not be built at all.
type ConstructionError struct {
	Backend string
	Err     error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("cannot construct SMBus controller %q: %v", e.Backend, e.Err)
}

func (e *ConstructionError) Unwrap() error {
	return e.Err
}
