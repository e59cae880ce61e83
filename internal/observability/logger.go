// Package observability owns the process-wide CLI logger.
package observability

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultLevel keeps diagnostics off the terminal unless something goes wrong.
const DefaultLevel = "warn"

// CLILogger is the logger used by commands. It is a no-op until InitCLILogger runs.
var CLILogger = zap.NewNop()

// InitCLILogger replaces CLILogger with a console logger on stderr.
// level is a zap level name ("debug", "info", "warn", "error").
func InitCLILogger(service, level string) error {
	logger, err := NewCLILogger(service, level)
	if err != nil {
		return err
	}
	CLILogger = logger
	return nil
}

// NewCLILogger builds a console logger on stderr tagged with the service name.
func NewCLILogger(service, level string) (*zap.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.Lock(os.Stderr), lvl)
	return zap.New(core).With(zap.String("service", service)), nil
}

// ParseLevel maps a level name to a zap level. An empty name yields DefaultLevel.
func ParseLevel(level string) (zapcore.Level, error) {
	if level == "" {
		level = DefaultLevel
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return lvl, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}
