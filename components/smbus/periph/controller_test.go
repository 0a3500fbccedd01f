package periph

import (
	"context"
	"testing"

	"go.viam.com/test"
	"periph.io/x/conn/v3/i2c/i2ctest"

	"github.com/hwdiag/smbusctl/components/smbus"
	"github.com/hwdiag/smbusctl/logging"
)

// 0xA0 on the command line is 0x50 on the wire.
const wireAddr = 0x50

func newPlayback(ops ...i2ctest.IO) *i2ctest.Playback {
	return &i2ctest.Playback{Ops: ops, DontPanic: true}
}

func TestReads(t *testing.T) {
	ctx := context.Background()
	bus := newPlayback(
		i2ctest.IO{Addr: wireAddr, W: []byte{0x10}, R: []byte{0x7F}},
		i2ctest.IO{Addr: wireAddr, W: []byte{0x00}, R: []byte{0x01}},
		i2ctest.IO{Addr: wireAddr, W: []byte{0x01}, R: []byte{0x02}},
		i2ctest.IO{Addr: wireAddr, W: []byte{0x08}, R: append([]byte{0x02, 0xAA, 0xBB}, make([]byte, 30)...)},
		i2ctest.IO{Addr: wireAddr, W: []byte{0x20}, R: append([]byte{0x03, 0x11, 0x22, 0x33}, make([]byte, 29)...)},
	)
	c := NewFromBus(bus, logging.NewTestLogger(t))
	test.That(t, c.IsSupported(ctx), test.ShouldBeTrue)
	test.That(t, c.Describe(ctx), test.ShouldContainSubstring, "periph i2c bus")

	b, err := c.ReadByte(ctx, 0xA0, 0x10)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, b, test.ShouldEqual, byte(0x7F))

	buf, err := c.ReadRange(ctx, 0xA0, 0x0, 2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, buf, test.ShouldResemble, []byte{0x01, 0x02})

	buf, err = c.ReadBlock(ctx, 0xA0, 0x8, smbus.ExactSize(2))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, buf, test.ShouldResemble, []byte{0xAA, 0xBB})

	buf, err = c.ReadBlock(ctx, 0xA0, 0x20, smbus.DeviceSize)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, buf, test.ShouldResemble, []byte{0x11, 0x22, 0x33})

	test.That(t, c.Close(), test.ShouldBeNil)
}

func TestExactBlockRead(t *testing.T) {
	ctx := context.Background()
	// Both reads run the same SMBus block transfer: a count byte and a full block of data.
	block := append([]byte{0x03, 0x11, 0x22, 0x33}, make([]byte, 29)...)
	bus := newPlayback(
		i2ctest.IO{Addr: wireAddr, W: []byte{0x20}, R: block},
		i2ctest.IO{Addr: wireAddr, W: []byte{0x20}, R: block},
		i2ctest.IO{Addr: wireAddr, W: []byte{0x20}, R: block},
	)
	c := NewFromBus(bus, logging.NewTestLogger(t))

	t.Run("fewer than the device sent", func(t *testing.T) {
		buf, err := c.ReadBlock(ctx, 0xA0, 0x20, smbus.ExactSize(2))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, buf, test.ShouldResemble, []byte{0x11, 0x22})
	})

	t.Run("all the device sent", func(t *testing.T) {
		buf, err := c.ReadBlock(ctx, 0xA0, 0x20, smbus.ExactSize(3))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, buf, test.ShouldResemble, []byte{0x11, 0x22, 0x33})
	})

	t.Run("more than the device sent", func(t *testing.T) {
		_, err := c.ReadBlock(ctx, 0xA0, 0x20, smbus.ExactSize(4))
		test.That(t, smbus.IsTransportError(err), test.ShouldBeTrue)
		test.That(t, err.Error(), test.ShouldContainSubstring, "short block: needed 4, got 3")
	})

	test.That(t, c.Close(), test.ShouldBeNil)
}

func TestWrites(t *testing.T) {
	ctx := context.Background()
	bus := newPlayback(
		i2ctest.IO{Addr: wireAddr, W: []byte{0x20, 0x5A}},
		i2ctest.IO{Addr: wireAddr, W: []byte{0x30, 0x04, 0xDE, 0xAD, 0xBE, 0xEF}},
	)
	c := NewFromBus(bus, logging.NewTestLogger(t))

	test.That(t, c.WriteByte(ctx, 0xA0, 0x20, 0x5A), test.ShouldBeNil)
	test.That(t, c.WriteBlock(ctx, 0xA0, 0x30, []byte{0xDE, 0xAD, 0xBE, 0xEF}), test.ShouldBeNil)
	test.That(t, c.Close(), test.ShouldBeNil)
}

func TestFailures(t *testing.T) {
	ctx := context.Background()
	bus := newPlayback(
		i2ctest.IO{Addr: wireAddr, W: []byte{0x00}, R: append([]byte{0x40}, make([]byte, 32)...)},
	)
	c := NewFromBus(bus, logging.NewTestLogger(t))

	_, err := c.ReadBlock(ctx, 0xA0, 0x0, smbus.DeviceSize)
	test.That(t, smbus.IsTransportError(err), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "malformed block length")

	// The playback is exhausted, so any further transfer fails like a missing device.
	_, err = c.ReadByte(ctx, 0xB0, 0x0)
	test.That(t, smbus.IsTransportError(err), test.ShouldBeTrue)

	_, err = c.ReadRange(ctx, 0xA0, 0xFF, 2)
	test.That(t, smbus.IsTransportError(err), test.ShouldBeTrue)

	err = c.WriteBlock(ctx, 0xA0, 0x0, make([]byte, smbus.MaxBlockLength+1))
	test.That(t, smbus.IsTransportError(err), test.ShouldBeTrue)

	_, err = c.ReadBlock(ctx, 0xA0, 0x0, smbus.ExactSize(smbus.MaxBlockLength+1))
	test.That(t, smbus.IsTransportError(err), test.ShouldBeTrue)
}
