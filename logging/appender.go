package logging

import (
	"io"
	"os"

	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// DefaultTimeFormatStr is the timestamp layout used by all appenders.
const DefaultTimeFormatStr = "2006-01-02T15:04:05.000Z0700"

// Appender is an output for log entries. `zapcore.Core` implementations (e.g. the test observer)
// satisfy it.
type Appender interface {
	Write(zapcore.Entry, []zapcore.Field) error
	Sync() error
}

type consoleAppender struct {
	io.Writer
	encoder zapcore.Encoder
}

// NewStdoutAppender creates a new appender that outputs to stdout.
func NewStdoutAppender() Appender {
	return NewWriterAppender(os.Stdout)
}

// NewWriterAppender creates an appender writing tab delimited console lines to `writer`:
//
//	2023-10-30T09:12:09.459Z	INFO	smbus	cli/dispatch.go:87	SMBus read: device 0xA0 offset 0x10 = 0x7F
func NewWriterAppender(writer io.Writer) Appender {
	return &consoleAppender{
		Writer:  writer,
		encoder: zapcore.NewConsoleEncoder(NewZapLoggerConfig().EncoderConfig),
	}
}

func (appender *consoleAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	buf, err := appender.encoder.EncodeEntry(entry, fields)
	if err != nil {
		return err
	}
	defer buf.Free()

	_, err = appender.Writer.Write(buf.Bytes())
	return err
}

func (appender *consoleAppender) Sync() error {
	if syncer, ok := appender.Writer.(interface{ Sync() error }); ok {
		//nolint:errcheck
		syncer.Sync()
	}
	return nil
}

// FileAppender writes the same lines as the console appender to a file that is rotated once it
// grows past MaxSize megabytes.
type FileAppender struct {
	consoleAppender
	rotator *lumberjack.Logger
}

// NewFileAppender creates an appender writing to `filename`, keeping two compressed backups.
func NewFileAppender(filename string) *FileAppender {
	rotator := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    10,
		MaxBackups: 2,
		Compress:   true,
	}
	return &FileAppender{
		consoleAppender: consoleAppender{
			Writer:  rotator,
			encoder: zapcore.NewConsoleEncoder(NewZapLoggerConfig().EncoderConfig),
		},
		rotator: rotator,
	}
}

// Close closes the current log file.
func (appender *FileAppender) Close() error {
	return appender.rotator.Close()
}
