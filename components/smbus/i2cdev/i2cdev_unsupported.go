//go:build !linux

package i2cdev

import (
	"runtime"

	"github.com/pkg/errors"

	"github.com/hwdiag/smbusctl/components/smbus"
	"github.com/hwdiag/smbusctl/logging"
)

// The i2c-dev interface only exists on Linux. Construction fails so the command reports it
// instead of refusing to build on other platforms.
func newController(conf smbus.Config, logger logging.Logger) (smbus.Controller, error) {
	return nil, errors.Errorf("i2c-dev is not available on %s", runtime.GOOS)
}
