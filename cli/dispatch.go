package cli

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"github.com/hwdiag/smbusctl/components/smbus"
	"github.com/hwdiag/smbusctl/logging"
)

// Result is what one dispatched operation produced. Writes carry the data that was sent.
type Result struct {
	Kind    OperationKind
	Address smbus.Address
	Offset  smbus.Offset
	Data    []byte
	Elapsed time.Duration
}

// A Dispatcher runs operations against a controller, reporting to its logger and writing read
// buffers to out.
type Dispatcher struct {
	controller smbus.Controller
	logger     logging.Logger
	out        io.Writer
	clk        clock.Clock
}

// NewDispatcher returns a Dispatcher. A nil clk uses the wall clock.
func NewDispatcher(controller smbus.Controller, logger logging.Logger, out io.Writer, clk clock.Clock) *Dispatcher {
	if clk == nil {
		clk = clock.New()
	}
	return &Dispatcher{
		controller: controller,
		logger:     logger,
		out:        out,
		clk:        clk,
	}
}

// Dispatch checks that the controller is supported, describes it and runs op as the single
// transaction of a new session. Failures are logged and returned; an unsupported controller
// returns smbus.ErrUnsupported without issuing any transaction.
func (d *Dispatcher) Dispatch(ctx context.Context, op Operation) (*Result, error) {
	start := d.clk.Now()
	session := smbus.NewSession(d.controller)
	if !session.CheckSupported(ctx) {
		d.logger.Info(smbus.ErrUnsupported.Error())
		return nil, smbus.ErrUnsupported
	}
	d.logger.Info(session.Describe(ctx))

	res, err := d.run(ctx, session, op)
	if err != nil {
		d.logger.Error(err)
	}
	elapsed := d.clk.Since(start)
	d.logger.Infof("(smbus) time elapsed %.3f", elapsed.Seconds())
	if err != nil {
		return nil, err
	}
	res.Elapsed = elapsed
	return res, nil
}

func (d *Dispatcher) run(ctx context.Context, session *smbus.Session, op Operation) (*Result, error) {
	switch op := op.(type) {
	case ByteRead:
		value, err := session.ReadByte(ctx, op.Address, op.Offset)
		if err != nil {
			return nil, err
		}
		d.logger.Infof("SMBus read: device %s offset %s = 0x%X", op.Address, op.Offset, value)
		return newResult(op, op.Address, op.Offset, []byte{value}), nil

	case RangeRead:
		buf, err := session.ReadRange(ctx, op.Address, op.Offset, op.Size)
		if err != nil {
			return nil, err
		}
		if len(buf) != op.Size {
			return nil, smbus.NewTransportError(smbus.OpReadRange, op.Address, op.Offset,
				errors.Errorf("needed %d bytes, got %d", op.Size, len(buf)))
		}
		d.logger.Infof("SMBus read: device %s offset %s size 0x%X", op.Address, op.Offset, op.Size)
		d.printBuffer(buf)
		return newResult(op, op.Address, op.Offset, buf), nil

	case BlockRead:
		buf, err := session.ReadBlock(ctx, op.Address, op.Offset, op.Size)
		if err != nil {
			return nil, err
		}
		if n, exact := op.Size.Value(); exact && len(buf) != n {
			return nil, smbus.NewTransportError(smbus.OpReadBlock, op.Address, op.Offset,
				errors.Errorf("needed %d bytes, got %d", n, len(buf)))
		}
		d.logger.Infof("SMBus block read: device %s offset %s size 0x%X", op.Address, op.Offset, len(buf))
		d.printBuffer(buf)
		return newResult(op, op.Address, op.Offset, buf), nil

	case ByteWrite:
		d.logger.Infof("SMBus write: device %s offset %s = 0x%X", op.Address, op.Offset, op.Value)
		if err := session.WriteByte(ctx, op.Address, op.Offset, op.Value); err != nil {
			return nil, err
		}
		return newResult(op, op.Address, op.Offset, []byte{op.Value}), nil

	case BlockWrite:
		d.logger.Infof("SMBus block write: device %s offset %s = 0x%s", op.Address, op.Offset, hex.EncodeToString(op.Data))
		if err := session.WriteBlock(ctx, op.Address, op.Offset, op.Data); err != nil {
			return nil, err
		}
		return newResult(op, op.Address, op.Offset, op.Data), nil
	}
	return nil, errors.Errorf("unknown operation %T", op)
}

func newResult(op Operation, addr smbus.Address, off smbus.Offset, data []byte) *Result {
	return &Result{Kind: op.Kind(), Address: addr, Offset: off, Data: data}
}

func (d *Dispatcher) printBuffer(buf []byte) {
	if d.out == nil {
		return
	}
	fmt.Fprintln(d.out, FormatBuffer(buf))
}
