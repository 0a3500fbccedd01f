// Package fake implements a simulated SMBus controller backed by in-memory register images.
package fake

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/hwdiag/smbusctl/components/smbus"
	"github.com/hwdiag/smbusctl/logging"
	"github.com/hwdiag/smbusctl/registry"
)

// ModelName is the backend name the fake controller registers under.
const ModelName = "fake"

var errShortTransfer = errors.New("device received a partial block")

func init() {
	registry.RegisterController(ModelName, registry.ControllerRegistration{
		Constructor: func(ctx context.Context, conf smbus.Config, logger logging.Logger) (smbus.Controller, error) {
			return NewController(conf, logger)
		},
	})
}

// A Transaction is one completed bus transaction, as the fake recorded it.
type Transaction struct {
	Op      string
	Address smbus.Address
	Offset  smbus.Offset
	Data    []byte
}

type device struct {
	regs        [smbus.OffsetSpace]byte
	blockLength int
}

// Controller is a stateful simulated controller. Writes land in the device's register image and
// are visible to later reads.
type Controller struct {
	mu           sync.Mutex
	logger       logging.Logger
	devices      map[smbus.Address]*device
	unsupported  bool
	maxTransfer  int
	transactions []Transaction
}

// NewController returns a fake controller seeded with conf.Devices.
func NewController(conf smbus.Config, logger logging.Logger) (*Controller, error) {
	c := &Controller{
		logger:  logger,
		devices: map[smbus.Address]*device{},
	}
	for idx, devConf := range conf.Devices {
		if err := devConf.Validate(fmt.Sprintf("devices.%d", idx)); err != nil {
			return nil, err
		}
		image, err := devConf.Image()
		if err != nil {
			return nil, err
		}
		c.AddDevice(smbus.Address(devConf.Address), image, devConf.BlockLength)
	}
	return c, nil
}

// AddDevice makes addr acknowledge, with image copied to its registers from offset 0.
func (c *Controller) AddDevice(addr smbus.Address, image []byte, blockLength int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	dev := &device{blockLength: blockLength}
	copy(dev.regs[:], image)
	c.devices[addr] = dev
}

// SetSupported controls what IsSupported reports.
func (c *Controller) SetSupported(supported bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unsupported = !supported
}

// SetMaxTransfer limits how many payload bytes a block write delivers; 0 means no limit. Longer
// writes reach the device truncated and fail.
func (c *Controller) SetMaxTransfer(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxTransfer = n
}

// Transactions returns every transaction that completed successfully.
func (c *Controller) Transactions() []Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Transaction(nil), c.transactions...)
}

// IsSupported reports the configured support flag.
func (c *Controller) IsSupported(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.unsupported
}

// Describe names the fake and its device count.
func (c *Controller) Describe(ctx context.Context) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fmt.Sprintf("fake SMBus controller with %d simulated devices", len(c.devices))
}

func (c *Controller) deviceLocked(op string, addr smbus.Address, off smbus.Offset) (*device, error) {
	dev, ok := c.devices[addr]
	if !ok {
		return nil, smbus.NewTransportError(op, addr, off, smbus.ErrNoAck)
	}
	return dev, nil
}

func (c *Controller) recordLocked(op string, addr smbus.Address, off smbus.Offset, data []byte) {
	c.transactions = append(c.transactions, Transaction{
		Op:      op,
		Address: addr,
		Offset:  off,
		Data:    append([]byte(nil), data...),
	})
}

// ReadByte returns the register at off.
func (c *Controller) ReadByte(ctx context.Context, addr smbus.Address, off smbus.Offset) (byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	dev, err := c.deviceLocked(smbus.OpReadByte, addr, off)
	if err != nil {
		return 0, err
	}
	value := dev.regs[off]
	c.recordLocked(smbus.OpReadByte, addr, off, []byte{value})
	return value, nil
}

// ReadRange reads size registers one byte transaction at a time.
func (c *Controller) ReadRange(ctx context.Context, addr smbus.Address, off smbus.Offset, size int) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := smbus.CheckRange(off, size); err != nil {
		return nil, smbus.NewTransportError(smbus.OpReadRange, addr, off, err)
	}
	buf := make([]byte, 0, size)
	for i := 0; i < size; i++ {
		cur := off + smbus.Offset(i)
		dev, err := c.deviceLocked(smbus.OpReadRange, addr, cur)
		if err != nil {
			return nil, err
		}
		buf = append(buf, dev.regs[cur])
	}
	c.recordLocked(smbus.OpReadRange, addr, off, buf)
	return buf, nil
}

// ReadBlock returns size registers, or the device's block length worth when size is
// smbus.DeviceSize.
func (c *Controller) ReadBlock(ctx context.Context, addr smbus.Address, off smbus.Offset, size smbus.Size) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	dev, err := c.deviceLocked(smbus.OpReadBlock, addr, off)
	if err != nil {
		return nil, err
	}
	n, exact := size.Value()
	if !exact {
		n = dev.blockLength
	}
	if err := smbus.CheckBlockLength(n); err != nil {
		return nil, smbus.NewTransportError(smbus.OpReadBlock, addr, off, err)
	}
	if err := smbus.CheckRange(off, n); err != nil {
		if !exact {
			err = errors.Wrap(err, "malformed block length")
		}
		return nil, smbus.NewTransportError(smbus.OpReadBlock, addr, off, err)
	}
	buf := append([]byte(nil), dev.regs[int(off):int(off)+n]...)
	c.recordLocked(smbus.OpReadBlock, addr, off, buf)
	return buf, nil
}

// WriteByte stores value at off.
func (c *Controller) WriteByte(ctx context.Context, addr smbus.Address, off smbus.Offset, value byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	dev, err := c.deviceLocked(smbus.OpWriteByte, addr, off)
	if err != nil {
		return err
	}
	dev.regs[off] = value
	c.recordLocked(smbus.OpWriteByte, addr, off, []byte{value})
	return nil
}

// WriteBlock stores data starting at off. The image only changes if the whole block arrived.
func (c *Controller) WriteBlock(ctx context.Context, addr smbus.Address, off smbus.Offset, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	dev, err := c.deviceLocked(smbus.OpWriteBlock, addr, off)
	if err != nil {
		return err
	}
	if err := smbus.CheckBlockLength(len(data)); err != nil {
		return smbus.NewTransportError(smbus.OpWriteBlock, addr, off, err)
	}
	if err := smbus.CheckRange(off, len(data)); err != nil {
		return smbus.NewTransportError(smbus.OpWriteBlock, addr, off, err)
	}
	received := data
	if c.maxTransfer > 0 && len(received) > c.maxTransfer {
		received = received[:c.maxTransfer]
	}
	if len(received) != len(data) {
		c.logger.Debugw("partial block observed", "device", addr, "sent", len(data), "received", len(received))
		return smbus.NewTransportError(smbus.OpWriteBlock, addr, off,
			errors.Wrapf(errShortTransfer, "got %d of %d bytes", len(received), len(data)))
	}
	copy(dev.regs[int(off):], received)
	c.recordLocked(smbus.OpWriteBlock, addr, off, received)
	return nil
}

// Close does nothing.
func (c *Controller) Close() error {
	return nil
}
