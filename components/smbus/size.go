package smbus

import "fmt"

// Size is the optional length of a block read. It is either an exact byte count chosen by the
// caller or DeviceSize, where the device's count byte decides. Use Value to branch on it.
type Size struct {
	n     int
	exact bool
}

// DeviceSize lets the controller take the block length from the bus response.
var DeviceSize = Size{}

// ExactSize requests exactly n bytes.
func ExactSize(n int) Size {
	return Size{n: n, exact: true}
}

// Value returns the requested length and true, or 0 and false for DeviceSize.
func (s Size) Value() (int, bool) {
	return s.n, s.exact
}

func (s Size) String() string {
	if !s.exact {
		return "device"
	}
	return fmt.Sprintf("0x%X", s.n)
}
