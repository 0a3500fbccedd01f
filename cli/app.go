// Package cli contains the smbusctl command: argument parsing, the operation dispatcher and
// output formatting.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"github.com/hwdiag/smbusctl/components/smbus"
	// register all controller backends.
	_ "github.com/hwdiag/smbusctl/components/smbus/register"
	"github.com/hwdiag/smbusctl/logging"
	"github.com/hwdiag/smbusctl/registry"
)

// Flags.
const (
	flagConfig  = "config"
	flagBackend = "backend"
	flagBus     = "bus"
	flagForce   = "force"
	flagDebug   = "debug"
	flagLogFile = "log-file"

	loggerKey  = "logger"
	logFileKey = "log-file"
)

var app = &cli.App{
	Name:            "smbusctl",
	Usage:           "read and write devices on an SMBus controller",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    flagConfig,
			Aliases: []string{"c"},
			Usage:   "load controller configuration from `FILE`",
		},
		&cli.StringFlag{
			Name:  flagBackend,
			Value: smbus.DefaultBackend,
			Usage: "controller backend (i2cdev, periph or fake)",
		},
		&cli.StringFlag{
			Name:  flagBus,
			Value: smbus.DefaultBus,
			Usage: "i2c bus number, device path or periph bus name",
		},
		&cli.BoolFlag{
			Name:  flagForce,
			Usage: "access addresses already claimed by a kernel driver",
		},
		&cli.BoolFlag{
			Name:    flagDebug,
			Aliases: []string{"vvv"},
			Usage:   "enable debug logging",
		},
		&cli.PathFlag{
			Name:  flagLogFile,
			Usage: "also append logs to `FILE`, rotated as it grows",
		},
	},
	Before: func(c *cli.Context) error {
		logger := logging.NewBlankLogger("smbusctl")
		logger.AddAppender(logging.NewWriterAppender(c.App.ErrWriter))
		if !c.Bool(flagDebug) {
			logger.SetLevel(logging.INFO)
		}
		c.App.Metadata = map[string]interface{}{loggerKey: logger}
		if path := c.Path(flagLogFile); path != "" {
			fileAppender := logging.NewFileAppender(path)
			logger.AddAppender(fileAppender)
			c.App.Metadata[logFileKey] = fileAppender
		}
		return nil
	},
	After: func(c *cli.Context) error {
		if closer, ok := c.App.Metadata[logFileKey].(io.Closer); ok {
			return closer.Close()
		}
		return nil
	},
	Commands: []*cli.Command{
		{
			Name:      "read",
			Usage:     "read one byte, or size bytes one at a time",
			ArgsUsage: "<dev_addr> <start_off> [size]",
			Action:    ReadAction,
		},
		{
			Name:      "write",
			Usage:     "write one byte",
			ArgsUsage: "<dev_addr> <off> <val>",
			Action:    WriteAction,
		},
		{
			Name:      "block_read",
			Usage:     "read an SMBus block, of size bytes or as long as the device reports",
			ArgsUsage: "<dev_addr> <start_off> [size]",
			Action:    BlockReadAction,
		},
		{
			Name:      "block_write",
			Usage:     "write a hex string as one SMBus block",
			ArgsUsage: "<dev_addr> <off> <data>",
			Action:    BlockWriteAction,
		},
	},
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	app.Writer = out
	app.ErrWriter = errOut
	return app
}

// ReadAction reads a byte or a range of bytes.
func ReadAction(c *cli.Context) error {
	return runOperation(c, ParseRead)
}

// WriteAction writes a byte.
func WriteAction(c *cli.Context) error {
	return runOperation(c, ParseWrite)
}

// BlockReadAction reads a block.
func BlockReadAction(c *cli.Context) error {
	return runOperation(c, ParseBlockRead)
}

// BlockWriteAction writes a block.
func BlockWriteAction(c *cli.Context) error {
	return runOperation(c, ParseBlockWrite)
}

func loggerFrom(c *cli.Context) logging.Logger {
	if logger, ok := c.App.Metadata[loggerKey].(logging.Logger); ok {
		return logger
	}
	return logging.NewLogger("smbusctl")
}

// loadConfig reads the config file, if any, and applies flags on top of it.
func loadConfig(c *cli.Context) (*smbus.Config, error) {
	conf := &smbus.Config{}
	if path := c.String(flagConfig); path != "" {
		var err error
		if conf, err = smbus.ReadConfig(path); err != nil {
			return nil, err
		}
	}
	if c.IsSet(flagBackend) || conf.Backend == "" {
		conf.Backend = c.String(flagBackend)
	}
	if c.IsSet(flagBus) || conf.Bus == "" {
		conf.Bus = c.String(flagBus)
	}
	if c.Bool(flagForce) {
		conf.Force = true
	}
	if err := conf.Validate(flagConfig); err != nil {
		return nil, err
	}
	return conf, nil
}

// runOperation parses the arguments, builds the controller and dispatches one operation.
// Only bad arguments or configuration fail the command; controller failures are logged.
func runOperation(c *cli.Context, parse func(args []string) (Operation, error)) (err error) {
	op, err := parse(c.Args().Slice())
	if err != nil {
		return err
	}
	conf, err := loadConfig(c)
	if err != nil {
		return err
	}

	logger := loggerFrom(c)
	controller, err := registry.NewController(c.Context, *conf, logger)
	if err != nil {
		logger.Error(err)
		return nil
	}
	defer func() {
		err = multierr.Combine(err, controller.Close())
	}()

	if _, err := NewDispatcher(controller, logger, c.App.Writer, nil).Dispatch(c.Context, op); err != nil {
		logger.Debugw("operation ended without a result", "kind", op.Kind(), "error", err)
	}
	return nil
}
