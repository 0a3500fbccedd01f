// Package register registers all SMBus controller backends.
package register

import (
	// register all backends.
	_ "github.com/hwdiag/smbusctl/components/smbus/fake"
	_ "github.com/hwdiag/smbusctl/components/smbus/i2cdev"
	_ "github.com/hwdiag/smbusctl/components/smbus/periph"
)
