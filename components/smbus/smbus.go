// Package smbus defines the SMBus access facade: a capability-checked controller supporting byte
// and block transactions addressed by device address and offset.
package smbus

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

const (
	// MaxBlockLength is the largest payload an SMBus block transaction carries.
	MaxBlockLength = 32
	// OffsetSpace is the number of addressable offsets (command codes) on a device.
	OffsetSpace = 0x100
)

// Address is a device address in the 8-bit form operators write it (e.g. 0xA0). The 7-bit bus
// address is Address >> 1.
type Address uint8

func (a Address) String() string {
	return fmt.Sprintf("0x%X", uint8(a))
}

// SevenBit returns the 7-bit bus address used by Linux style adapters.
func (a Address) SevenBit() uint16 {
	return uint16(a) >> 1
}

// Offset is a register offset (SMBus command code) within a device.
type Offset uint8

func (o Offset) String() string {
	return fmt.Sprintf("0x%X", uint8(o))
}

// A Controller is an SMBus host controller. Implementations own any locking needed to arbitrate
// with other bus users; callers issue requests serially.
type Controller interface {
	// IsSupported reports whether this is a usable SMBus controller. It is idempotent and never
	// touches the bus.
	IsSupported(ctx context.Context) bool

	// Describe returns controller identity information.
	Describe(ctx context.Context) string

	// ReadByte performs a single read byte data transaction.
	ReadByte(ctx context.Context, addr Address, off Offset) (byte, error)

	// ReadRange reads size sequential bytes starting at off using byte transactions. Either all
	// bytes are returned or an error is.
	ReadRange(ctx context.Context, addr Address, off Offset, size int) ([]byte, error)

	// ReadBlock performs a block read. With DeviceSize the returned length comes from the
	// device's count byte.
	ReadBlock(ctx context.Context, addr Address, off Offset, size Size) ([]byte, error)

	// WriteByte performs a single write byte data transaction.
	WriteByte(ctx context.Context, addr Address, off Offset, value byte) error

	// WriteBlock sends data as one block write transaction.
	WriteBlock(ctx context.Context, addr Address, off Offset, data []byte) error

	Close() error
}

// CheckRange verifies that size bytes starting at off fit in the offset space.
func CheckRange(off Offset, size int) error {
	if size < 0 {
		return errors.Errorf("negative size %d", size)
	}
	if int(off)+size > OffsetSpace {
		return errors.Errorf("offset %s plus size 0x%X exceeds offset space 0x%X", off, size, OffsetSpace)
	}
	return nil
}

// CheckBlockLength verifies a block payload length against the protocol maximum.
func CheckBlockLength(n int) error {
	if n < 0 || n > MaxBlockLength {
		return errors.Errorf("block length %d outside 0..%d", n, MaxBlockLength)
	}
	return nil
}
