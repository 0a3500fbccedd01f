// Package periph implements an SMBus controller on a periph.io I2C bus. SMBus transactions are
// framed as plain I2C transfers, which is how periph drivers talk to SMBus devices.
package periph

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/hwdiag/smbusctl/components/smbus"
	"github.com/hwdiag/smbusctl/logging"
	"github.com/hwdiag/smbusctl/registry"
)

// ModelName is the backend name this controller registers under.
const ModelName = "periph"

func init() {
	registry.RegisterController(ModelName, registry.ControllerRegistration{
		Constructor: func(ctx context.Context, conf smbus.Config, logger logging.Logger) (smbus.Controller, error) {
			if _, err := host.Init(); err != nil {
				return nil, errors.Wrap(err, "cannot initialize periph host drivers")
			}
			bus, err := i2creg.Open(conf.Bus)
			if err != nil {
				return nil, errors.Wrapf(err, "cannot open i2c bus %q", conf.Bus)
			}
			if conf.Force {
				logger.Debug("periph buses never share addresses with kernel drivers, ignoring force")
			}
			return NewFromBus(bus, logger), nil
		},
	})
}

// Controller drives SMBus transactions over an i2c.BusCloser.
type Controller struct {
	mu     sync.Mutex
	logger logging.Logger
	bus    i2c.BusCloser
}

// NewFromBus wraps an already open bus.
func NewFromBus(bus i2c.BusCloser, logger logging.Logger) *Controller {
	return &Controller{logger: logger, bus: bus}
}

// IsSupported is true for any open bus; periph has no way to ask an adapter which SMBus
// transactions it implements.
func (c *Controller) IsSupported(ctx context.Context) bool {
	return c.bus != nil
}

func (c *Controller) Describe(ctx context.Context) string {
	return "periph i2c bus " + c.bus.String()
}

func (c *Controller) tx(addr smbus.Address, w, r []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bus.Tx(addr.SevenBit(), w, r)
}

func (c *Controller) ReadByte(ctx context.Context, addr smbus.Address, off smbus.Offset) (byte, error) {
	r := make([]byte, 1)
	if err := c.tx(addr, []byte{byte(off)}, r); err != nil {
		return 0, smbus.NewTransportError(smbus.OpReadByte, addr, off, err)
	}
	return r[0], nil
}

// ReadRange issues one byte read per register.
func (c *Controller) ReadRange(ctx context.Context, addr smbus.Address, off smbus.Offset, size int) ([]byte, error) {
	if err := smbus.CheckRange(off, size); err != nil {
		return nil, smbus.NewTransportError(smbus.OpReadRange, addr, off, err)
	}
	buf := make([]byte, size)
	for i := range buf {
		cur := off + smbus.Offset(i)
		if err := c.tx(addr, []byte{byte(cur)}, buf[i:i+1]); err != nil {
			return nil, smbus.NewTransportError(smbus.OpReadRange, addr, cur, err)
		}
	}
	return buf, nil
}

// ReadBlock reads a count byte followed by a full block. smbus.DeviceSize returns count bytes;
// an exact size returns the first size bytes and fails if the device sent fewer.
func (c *Controller) ReadBlock(ctx context.Context, addr smbus.Address, off smbus.Offset, size smbus.Size) ([]byte, error) {
	want, exact := size.Value()
	if exact {
		if err := smbus.CheckBlockLength(want); err != nil {
			return nil, smbus.NewTransportError(smbus.OpReadBlock, addr, off, err)
		}
	}

	r := make([]byte, smbus.MaxBlockLength+1)
	if err := c.tx(addr, []byte{byte(off)}, r); err != nil {
		return nil, smbus.NewTransportError(smbus.OpReadBlock, addr, off, err)
	}
	count := int(r[0])
	if err := smbus.CheckBlockLength(count); err != nil {
		return nil, smbus.NewTransportError(smbus.OpReadBlock, addr, off, errors.Wrap(err, "malformed block length"))
	}
	if !exact {
		want = count
	}
	if count < want {
		return nil, smbus.NewTransportError(smbus.OpReadBlock, addr, off,
			errors.Errorf("short block: needed %d, got %d", want, count))
	}
	return r[1 : 1+want], nil
}

func (c *Controller) WriteByte(ctx context.Context, addr smbus.Address, off smbus.Offset, value byte) error {
	if err := c.tx(addr, []byte{byte(off), value}, nil); err != nil {
		return smbus.NewTransportError(smbus.OpWriteByte, addr, off, err)
	}
	return nil
}

// WriteBlock sends the offset, a count byte and data in a single transfer.
func (c *Controller) WriteBlock(ctx context.Context, addr smbus.Address, off smbus.Offset, data []byte) error {
	if err := smbus.CheckBlockLength(len(data)); err != nil {
		return smbus.NewTransportError(smbus.OpWriteBlock, addr, off, err)
	}
	w := make([]byte, 0, len(data)+2)
	w = append(w, byte(off), byte(len(data)))
	w = append(w, data...)
	if err := c.tx(addr, w, nil); err != nil {
		return smbus.NewTransportError(smbus.OpWriteBlock, addr, off, err)
	}
	return nil
}

func (c *Controller) Close() error {
	return c.bus.Close()
}
