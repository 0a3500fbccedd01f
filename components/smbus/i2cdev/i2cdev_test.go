package i2cdev

import (
	"testing"

	"go.viam.com/test"

	"github.com/hwdiag/smbusctl/components/smbus"
	"github.com/hwdiag/smbusctl/registry"
)

func TestDevicePath(t *testing.T) {
	for _, bus := range []string{"1", "i2c-1", "/dev/i2c-1", " 1 "} {
		path, number, err := devicePath(bus)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, path, test.ShouldEqual, "/dev/i2c-1")
		test.That(t, number, test.ShouldEqual, 1)
	}

	for _, bus := range []string{"", "i2c", "/dev/spidev0.0", "-3", "0x1"} {
		_, _, err := devicePath(bus)
		test.That(t, err, test.ShouldNotBeNil)
	}

	test.That(t, adapterNamePath(7), test.ShouldEqual, "/sys/class/i2c-dev/i2c-7/name")
}

func TestPackBlock(t *testing.T) {
	buf, err := packBlock([]byte{0xDE, 0xAD, 0xBE, 0xEF})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, buf[:6], test.ShouldResemble, []byte{0x04, 0xDE, 0xAD, 0xBE, 0xEF, 0x00})

	_, err = packBlock(make([]byte, smbus.MaxBlockLength+1))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestUnpackBlock(t *testing.T) {
	buf := blockBuffer{3, 0x11, 0x22, 0x33, 0x44}

	data, err := unpackBlock(&buf, -1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, data, test.ShouldResemble, []byte{0x11, 0x22, 0x33})

	data, err = unpackBlock(&buf, 3)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, data, test.ShouldResemble, []byte{0x11, 0x22, 0x33})

	// An exact size strips the count byte and keeps the leading data bytes.
	data, err = unpackBlock(&buf, 2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, data, test.ShouldResemble, []byte{0x11, 0x22})

	data, err = unpackBlock(&buf, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, data, test.ShouldBeEmpty)

	_, err = unpackBlock(&buf, 4)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "short block")

	buf[0] = smbus.MaxBlockLength + 1
	_, err = unpackBlock(&buf, -1)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "malformed block length")
}

func TestRegistered(t *testing.T) {
	test.That(t, registry.ControllerLookup(ModelName), test.ShouldNotBeNil)
}
