//go:build linux

package i2cdev

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/hwdiag/smbusctl/components/smbus"
	"github.com/hwdiag/smbusctl/logging"
)

// ioctl requests and constants from linux/i2c-dev.h and linux/i2c.h.
const (
	i2cSlave      = 0x0703
	i2cSlaveForce = 0x0706
	i2cFuncs      = 0x0705
	i2cSMBus      = 0x0720

	smbusWrite uint8 = 0
	smbusRead  uint8 = 1

	smbusByteData  uint32 = 2
	smbusBlockData uint32 = 5

	funcSMBusReadByteData   = 0x00080000
	funcSMBusWriteByteData  = 0x00100000
	funcSMBusReadBlockData  = 0x01000000
	funcSMBusWriteBlockData = 0x02000000
)

// smbusIoctlData mirrors struct i2c_smbus_ioctl_data.
type smbusIoctlData struct {
	readWrite uint8
	command   uint8
	size      uint32
	data      *blockBuffer
}

type controller struct {
	// mu covers address selection plus the transfer that follows it.
	mu     sync.Mutex
	logger logging.Logger
	file   *os.File
	path   string
	number int
	force  bool
}

func newController(conf smbus.Config, logger logging.Logger) (smbus.Controller, error) {
	path, number, err := devicePath(conf.Bus)
	if err != nil {
		return nil, err
	}
	//nolint:gosec
	file, err := os.OpenFile(path, os.O_RDWR, 0o600)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open %s", path)
	}
	logger.Debugw("opened i2c adapter", "path", path, "force", conf.Force)
	return &controller{
		logger: logger,
		file:   file,
		path:   path,
		number: number,
		force:  conf.Force,
	}, nil
}

func ioctl(fd, request uintptr, arg unsafe.Pointer) error {
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, request, uintptr(arg)); errno != 0 {
		return errno
	}
	return nil
}

func (c *controller) functionality() (uint, error) {
	var funcs uint
	if err := ioctl(c.file.Fd(), i2cFuncs, unsafe.Pointer(&funcs)); err != nil {
		return 0, err
	}
	return funcs, nil
}

// IsSupported requires byte data reads and writes; block support is reported by Describe.
func (c *controller) IsSupported(ctx context.Context) bool {
	funcs, err := c.functionality()
	if err != nil {
		c.logger.Debugw("I2C_FUNCS failed", "path", c.path, "error", err)
		return false
	}
	const required = funcSMBusReadByteData | funcSMBusWriteByteData
	return funcs&required == required
}

func (c *controller) Describe(ctx context.Context) string {
	name := "unknown adapter"
	//nolint:gosec
	if raw, err := os.ReadFile(adapterNamePath(c.number)); err == nil {
		name = strings.TrimSpace(string(raw))
	}
	funcs, err := c.functionality()
	if err != nil {
		return fmt.Sprintf("%s: %s", c.path, name)
	}
	return fmt.Sprintf("%s: %s (block read %t, block write %t)", c.path, name,
		funcs&funcSMBusReadBlockData != 0,
		funcs&funcSMBusWriteBlockData != 0)
}

func (c *controller) selectAddressLocked(addr smbus.Address) error {
	request := uintptr(i2cSlave)
	if c.force {
		request = i2cSlaveForce
	}
	// I2C_SLAVE takes the address by value.
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, c.file.Fd(), request, uintptr(addr.SevenBit())); errno != 0 {
		if errno == unix.EBUSY {
			return errors.Wrap(errno, "address claimed by a kernel driver, use --force")
		}
		return errno
	}
	return nil
}

func (c *controller) transferLocked(addr smbus.Address, readWrite uint8, off smbus.Offset, size uint32, data *blockBuffer) error {
	if err := c.selectAddressLocked(addr); err != nil {
		return err
	}
	args := smbusIoctlData{readWrite: readWrite, command: uint8(off), size: size, data: data}
	return classify(ioctl(c.file.Fd(), i2cSMBus, unsafe.Pointer(&args)))
}

// classify folds the errnos adapters use for a missing acknowledge into smbus.ErrNoAck.
func classify(err error) error {
	var errno unix.Errno
	if errors.As(err, &errno) {
		switch errno {
		case unix.ENXIO, unix.EREMOTEIO, unix.EIO:
			return errors.Wrap(smbus.ErrNoAck, errno.Error())
		default:
		}
	}
	return err
}

func (c *controller) readByteLocked(addr smbus.Address, off smbus.Offset) (byte, error) {
	var data blockBuffer
	if err := c.transferLocked(addr, smbusRead, off, smbusByteData, &data); err != nil {
		return 0, err
	}
	return data[0], nil
}

func (c *controller) ReadByte(ctx context.Context, addr smbus.Address, off smbus.Offset) (byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, err := c.readByteLocked(addr, off)
	if err != nil {
		return 0, smbus.NewTransportError(smbus.OpReadByte, addr, off, err)
	}
	return value, nil
}

func (c *controller) ReadRange(ctx context.Context, addr smbus.Address, off smbus.Offset, size int) ([]byte, error) {
	if err := smbus.CheckRange(off, size); err != nil {
		return nil, smbus.NewTransportError(smbus.OpReadRange, addr, off, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	buf := make([]byte, size)
	for i := range buf {
		cur := off + smbus.Offset(i)
		value, err := c.readByteLocked(addr, cur)
		if err != nil {
			return nil, smbus.NewTransportError(smbus.OpReadRange, addr, cur, err)
		}
		buf[i] = value
	}
	return buf, nil
}

// ReadBlock always runs an SMBus block read. An exact size takes the first size bytes of the
// block the device sends.
func (c *controller) ReadBlock(ctx context.Context, addr smbus.Address, off smbus.Offset, size smbus.Size) ([]byte, error) {
	want := -1
	if n, exact := size.Value(); exact {
		if err := smbus.CheckBlockLength(n); err != nil {
			return nil, smbus.NewTransportError(smbus.OpReadBlock, addr, off, err)
		}
		want = n
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	var data blockBuffer
	if err := c.transferLocked(addr, smbusRead, off, smbusBlockData, &data); err != nil {
		return nil, smbus.NewTransportError(smbus.OpReadBlock, addr, off, err)
	}
	buf, err := unpackBlock(&data, want)
	if err != nil {
		return nil, smbus.NewTransportError(smbus.OpReadBlock, addr, off, err)
	}
	return buf, nil
}

func (c *controller) WriteByte(ctx context.Context, addr smbus.Address, off smbus.Offset, value byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data := blockBuffer{value}
	if err := c.transferLocked(addr, smbusWrite, off, smbusByteData, &data); err != nil {
		return smbus.NewTransportError(smbus.OpWriteByte, addr, off, err)
	}
	return nil
}

func (c *controller) WriteBlock(ctx context.Context, addr smbus.Address, off smbus.Offset, data []byte) error {
	buf, err := packBlock(data)
	if err != nil {
		return smbus.NewTransportError(smbus.OpWriteBlock, addr, off, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.transferLocked(addr, smbusWrite, off, smbusBlockData, buf); err != nil {
		return smbus.NewTransportError(smbus.OpWriteBlock, addr, off, err)
	}
	return nil
}

func (c *controller) Close() error {
	return c.file.Close()
}
