package smbus

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"
	"go.viam.com/utils"
	"gopkg.in/yaml.v3"
)

// Defaults applied when neither the config file nor flags choose.
const (
	DefaultBackend = "i2cdev"
	DefaultBus     = "0"
)

// A Config selects and parameterizes the controller backend.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	// Bus is the adapter: a number ("1"), a device path ("/dev/i2c-1") or a periph bus name.
	Bus string `json:"bus" yaml:"bus"`
	// Force claims addresses already bound by a kernel driver.
	Force   bool           `json:"force,omitempty" yaml:"force,omitempty"`
	Devices []DeviceConfig `json:"devices,omitempty" yaml:"devices,omitempty"`
}

// DeviceConfig describes a simulated device for the fake backend.
type DeviceConfig struct {
	Address int `json:"address" yaml:"address"`
	// Data is a hex image of the device registers starting at offset 0.
	Data string `json:"data,omitempty" yaml:"data,omitempty"`
	// BlockLength is the count byte the device answers block reads with.
	BlockLength int `json:"block_length,omitempty" yaml:"block_length,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) error {
	if conf.Backend == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "backend")
	}
	seen := map[int]bool{}
	for idx, dev := range conf.Devices {
		if err := dev.Validate(fmt.Sprintf("%s.%s.%d", path, "devices", idx)); err != nil {
			return err
		}
		if seen[dev.Address] {
			return utils.NewConfigValidationError(path, errors.Errorf("device address 0x%X listed twice", dev.Address))
		}
		seen[dev.Address] = true
	}
	return nil
}

// Validate ensures all parts of the config are valid.
func (conf *DeviceConfig) Validate(path string) error {
	if conf.Address < 0 || conf.Address > 0xFF {
		return utils.NewConfigValidationError(path, errors.Errorf("address 0x%X out of range", conf.Address))
	}
	image, err := conf.Image()
	if err != nil {
		return utils.NewConfigValidationError(path, err)
	}
	if len(image) > OffsetSpace {
		return utils.NewConfigValidationError(path, errors.Errorf("data is %d bytes, more than 0x%X", len(image), OffsetSpace))
	}
	if err := CheckBlockLength(conf.BlockLength); err != nil {
		return utils.NewConfigValidationError(path, err)
	}
	return nil
}

// Image returns the decoded register image.
func (conf *DeviceConfig) Image() ([]byte, error) {
	image, err := DecodeHex(conf.Data)
	if err != nil {
		return nil, errors.Wrapf(err, "device 0x%X data", conf.Address)
	}
	return image, nil
}

// ReadConfig reads a YAML (or JSON) config file after expanding environment variables in it. An
// empty file yields an empty config.
func ReadConfig(path string) (*Config, error) {
	buf, err := envsubst.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read config")
	}
	return FromReader(bytes.NewReader(buf))
}

// FromReader decodes a config from r. Unknown keys are rejected.
func FromReader(r io.Reader) (*Config, error) {
	var conf Config
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&conf); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "cannot parse config")
	}
	return &conf, nil
}

// DecodeHex decodes a hex byte string such as "DEADBEEF", "0xde ad be ef" or "".
func DecodeHex(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid hex data %q", s)
	}
	return data, nil
}
