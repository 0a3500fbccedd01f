// Package inject provides mocks whose behavior is swapped in through function fields.
package inject

import (
	"context"

	"github.com/hwdiag/smbusctl/components/smbus"
)

// Controller is an injected smbus.Controller.
type Controller struct {
	smbus.Controller
	IsSupportedFunc func(ctx context.Context) bool
	DescribeFunc    func(ctx context.Context) string
	ReadByteFunc    func(ctx context.Context, addr smbus.Address, off smbus.Offset) (byte, error)
	ReadRangeFunc   func(ctx context.Context, addr smbus.Address, off smbus.Offset, size int) ([]byte, error)
	ReadBlockFunc   func(ctx context.Context, addr smbus.Address, off smbus.Offset, size smbus.Size) ([]byte, error)
	WriteByteFunc   func(ctx context.Context, addr smbus.Address, off smbus.Offset, value byte) error
	WriteBlockFunc  func(ctx context.Context, addr smbus.Address, off smbus.Offset, data []byte) error
	CloseFunc       func() error
}

// IsSupported calls the injected IsSupported or the real version.
func (c *Controller) IsSupported(ctx context.Context) bool {
	if c.IsSupportedFunc == nil {
		return c.Controller.IsSupported(ctx)
	}
	return c.IsSupportedFunc(ctx)
}

// Describe calls the injected Describe or the real version.
func (c *Controller) Describe(ctx context.Context) string {
	if c.DescribeFunc == nil {
		return c.Controller.Describe(ctx)
	}
	return c.DescribeFunc(ctx)
}

// ReadByte calls the injected ReadByte or the real version.
func (c *Controller) ReadByte(ctx context.Context, addr smbus.Address, off smbus.Offset) (byte, error) {
	if c.ReadByteFunc == nil {
		return c.Controller.ReadByte(ctx, addr, off)
	}
	return c.ReadByteFunc(ctx, addr, off)
}

// ReadRange calls the injected ReadRange or the real version.
func (c *Controller) ReadRange(ctx context.Context, addr smbus.Address, off smbus.Offset, size int) ([]byte, error) {
	if c.ReadRangeFunc == nil {
		return c.Controller.ReadRange(ctx, addr, off, size)
	}
	return c.ReadRangeFunc(ctx, addr, off, size)
}

// ReadBlock calls the injected ReadBlock or the real version.
func (c *Controller) ReadBlock(ctx context.Context, addr smbus.Address, off smbus.Offset, size smbus.Size) ([]byte, error) {
	if c.ReadBlockFunc == nil {
		return c.Controller.ReadBlock(ctx, addr, off, size)
	}
	return c.ReadBlockFunc(ctx, addr, off, size)
}

// WriteByte calls the injected WriteByte or the real version.
func (c *Controller) WriteByte(ctx context.Context, addr smbus.Address, off smbus.Offset, value byte) error {
	if c.WriteByteFunc == nil {
		return c.Controller.WriteByte(ctx, addr, off, value)
	}
	return c.WriteByteFunc(ctx, addr, off, value)
}

// WriteBlock calls the injected WriteBlock or the real version.
func (c *Controller) WriteBlock(ctx context.Context, addr smbus.Address, off smbus.Offset, data []byte) error {
	if c.WriteBlockFunc == nil {
		return c.Controller.WriteBlock(ctx, addr, off, data)
	}
	return c.WriteBlockFunc(ctx, addr, off, data)
}

// Close calls the injected Close or the real version.
func (c *Controller) Close() error {
	if c.CloseFunc == nil {
		if c.Controller == nil {
			return nil
		}
		return c.Controller.Close()
	}
	return c.CloseFunc()
}
