package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/hwdiag/smbusctl/components/smbus"
)

var (
	errMissingArgument    = errors.New("missing argument")
	errUnexpectedArgument = errors.New("unexpected argument")
	errNoData             = errors.New("no data to write")
)

// InputParseError is a malformed or out of range command argument. It is reported before any
// controller is built.
type InputParseError struct {
	Arg   string
	Value string
	Err   error
}

func (e *InputParseError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %v", e.Arg, e.Err)
	}
	return fmt.Sprintf("invalid %s %q: %v", e.Arg, e.Value, e.Err)
}

func (e *InputParseError) Unwrap() error {
	return e.Err
}

// parseHexUint parses value as base 16 with an optional 0x prefix.
func parseHexUint(arg, value string, bitSize int) (uint64, error) {
	digits := value
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		digits = digits[2:]
	}
	n, err := strconv.ParseUint(digits, 16, bitSize)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			err = numErr.Err
		}
		return 0, &InputParseError{Arg: arg, Value: value, Err: err}
	}
	return n, nil
}

// checkArgCount requires the first required names and allows the rest.
func checkArgCount(args []string, required int, names ...string) error {
	if len(args) < required {
		return &InputParseError{Arg: names[len(args)], Err: errMissingArgument}
	}
	if len(args) > len(names) {
		return &InputParseError{Arg: "arguments", Value: args[len(names)], Err: errUnexpectedArgument}
	}
	return nil
}

func parseTarget(args []string, offsetArg string) (smbus.Address, smbus.Offset, error) {
	addr, err := parseHexUint("dev_addr", args[0], 8)
	if err != nil {
		return 0, 0, err
	}
	off, err := parseHexUint(offsetArg, args[1], 8)
	if err != nil {
		return 0, 0, err
	}
	return smbus.Address(addr), smbus.Offset(off), nil
}

// ParseRead parses `read <dev_addr> <start_off> [size]`. Without a size it reads one byte.
func ParseRead(args []string) (Operation, error) {
	if err := checkArgCount(args, 2, "dev_addr", "start_off", "size"); err != nil {
		return nil, err
	}
	addr, off, err := parseTarget(args, "start_off")
	if err != nil {
		return nil, err
	}
	if len(args) == 2 {
		return ByteRead{Address: addr, Offset: off}, nil
	}
	size, err := parseHexUint("size", args[2], 16)
	if err != nil {
		return nil, err
	}
	if err := smbus.CheckRange(off, int(size)); err != nil {
		return nil, &InputParseError{Arg: "size", Value: args[2], Err: err}
	}
	return RangeRead{Address: addr, Offset: off, Size: int(size)}, nil
}

// ParseWrite parses `write <dev_addr> <off> <val>`.
func ParseWrite(args []string) (Operation, error) {
	if err := checkArgCount(args, 3, "dev_addr", "off", "val"); err != nil {
		return nil, err
	}
	addr, off, err := parseTarget(args, "off")
	if err != nil {
		return nil, err
	}
	value, err := parseHexUint("val", args[2], 8)
	if err != nil {
		return nil, err
	}
	return ByteWrite{Address: addr, Offset: off, Value: byte(value)}, nil
}

// ParseBlockRead parses `block_read <dev_addr> <start_off> [size]`. Without a size the device
// decides how much to return.
func ParseBlockRead(args []string) (Operation, error) {
	if err := checkArgCount(args, 2, "dev_addr", "start_off", "size"); err != nil {
		return nil, err
	}
	addr, off, err := parseTarget(args, "start_off")
	if err != nil {
		return nil, err
	}
	size := smbus.DeviceSize
	if len(args) == 3 {
		n, err := parseHexUint("size", args[2], 8)
		if err != nil {
			return nil, err
		}
		size = smbus.ExactSize(int(n))
	}
	return BlockRead{Address: addr, Offset: off, Size: size}, nil
}

// ParseBlockWrite parses `block_write <dev_addr> <off> [data]`.
func ParseBlockWrite(args []string) (Operation, error) {
	if err := checkArgCount(args, 2, "dev_addr", "off", "data"); err != nil {
		return nil, err
	}
	addr, off, err := parseTarget(args, "off")
	if err != nil {
		return nil, err
	}
	if len(args) == 2 {
		return nil, &InputParseError{Arg: "data", Err: errNoData}
	}
	data, err := smbus.DecodeHex(args[2])
	if err != nil {
		return nil, &InputParseError{Arg: "data", Value: args[2], Err: err}
	}
	if len(data) == 0 {
		return nil, &InputParseError{Arg: "data", Value: args[2], Err: errNoData}
	}
	return BlockWrite{Address: addr, Offset: off, Data: data}, nil
}
