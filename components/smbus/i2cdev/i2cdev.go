// Package i2cdev implements an SMBus controller on top of the Linux i2c-dev interface, issuing
// I2C_SMBUS ioctls so block transfers use the real SMBus protocol.
package i2cdev

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/hwdiag/smbusctl/components/smbus"
	"github.com/hwdiag/smbusctl/logging"
	"github.com/hwdiag/smbusctl/registry"
)

// ModelName is the backend name this controller registers under.
const ModelName = "i2cdev"

const (
	devPrefix   = "/dev/i2c-"
	sysfsPrefix = "/sys/class/i2c-dev"
)

func init() {
	registry.RegisterController(ModelName, registry.ControllerRegistration{
		Constructor: func(ctx context.Context, conf smbus.Config, logger logging.Logger) (smbus.Controller, error) {
			return newController(conf, logger)
		},
	})
}

// devicePath accepts "1", "i2c-1" or "/dev/i2c-1" and returns the device node and bus number.
func devicePath(bus string) (string, int, error) {
	name := strings.TrimPrefix(strings.TrimSpace(bus), "/dev/")
	name = strings.TrimPrefix(name, "i2c-")
	number, err := strconv.Atoi(name)
	if err != nil || number < 0 {
		return "", 0, errors.Errorf("malformed i2c bus %q", bus)
	}
	return fmt.Sprintf("%s%d", devPrefix, number), number, nil
}

func adapterNamePath(number int) string {
	return filepath.Join(sysfsPrefix, fmt.Sprintf("i2c-%d", number), "name")
}

// blockBuffer is the kernel's union i2c_smbus_data: a count byte, up to 32 data bytes and a
// spare byte for PEC.
type blockBuffer [smbus.MaxBlockLength + 2]byte

func packBlock(data []byte) (*blockBuffer, error) {
	if err := smbus.CheckBlockLength(len(data)); err != nil {
		return nil, err
	}
	var buf blockBuffer
	buf[0] = byte(len(data))
	copy(buf[1:], data)
	return &buf, nil
}

// unpackBlock returns the data a block read left in buf. want < 0 returns the whole block;
// otherwise the first want bytes, which the device must have sent.
func unpackBlock(buf *blockBuffer, want int) ([]byte, error) {
	count := int(buf[0])
	if err := smbus.CheckBlockLength(count); err != nil {
		return nil, errors.Wrap(err, "malformed block length")
	}
	if want < 0 {
		want = count
	}
	if count < want {
		return nil, errors.Errorf("short block: needed %d, got %d", want, count)
	}
	return append([]byte(nil), buf[1:1+want]...), nil
}
