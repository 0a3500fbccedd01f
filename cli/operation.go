package cli

import (
	"github.com/hwdiag/smbusctl/components/smbus"
)

// OperationKind names the transaction an Operation performs.
type OperationKind int

// The operations a command can run.
const (
	KindByteRead OperationKind = iota
	KindRangeRead
	KindBlockRead
	KindByteWrite
	KindBlockWrite
)

func (k OperationKind) String() string {
	switch k {
	case KindByteRead:
		return "byte read"
	case KindRangeRead:
		return "range read"
	case KindBlockRead:
		return "block read"
	case KindByteWrite:
		return "byte write"
	case KindBlockWrite:
		return "block write"
	}
	return "unknown"
}

// An Operation is one fully parsed request. It is implemented only by ByteRead, RangeRead,
// BlockRead, ByteWrite and BlockWrite.
type Operation interface {
	Kind() OperationKind
	operation()
}

// ByteRead reads the single register at Offset.
type ByteRead struct {
	Address smbus.Address
	Offset  smbus.Offset
}

// RangeRead reads Size consecutive registers starting at Offset, one byte transaction each.
type RangeRead struct {
	Address smbus.Address
	Offset  smbus.Offset
	Size    int
}

// BlockRead runs an SMBus block read.
type BlockRead struct {
	Address smbus.Address
	Offset  smbus.Offset
	Size    smbus.Size
}

// ByteWrite writes Value to the register at Offset.
type ByteWrite struct {
	Address smbus.Address
	Offset  smbus.Offset
	Value   byte
}

// BlockWrite writes all of Data in one block transaction.
type BlockWrite struct {
	Address smbus.Address
	Offset  smbus.Offset
	Data    []byte
}

// Kind returns KindByteRead.
func (ByteRead) Kind() OperationKind { return KindByteRead }

// Kind returns KindRangeRead.
func (RangeRead) Kind() OperationKind { return KindRangeRead }

// Kind returns KindBlockRead.
func (BlockRead) Kind() OperationKind { return KindBlockRead }

// Kind returns KindByteWrite.
func (ByteWrite) Kind() OperationKind { return KindByteWrite }

// Kind returns KindBlockWrite.
func (BlockWrite) Kind() OperationKind { return KindBlockWrite }

func (ByteRead) operation()   {}
func (RangeRead) operation()  {}
func (BlockRead) operation()  {}
func (ByteWrite) operation()  {}
func (BlockWrite) operation() {}
