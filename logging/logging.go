// Package logging builds the zap loggers the library's components expect to
// be injected with.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	// Debug enables debug-level logging, otherwise info level.
	Debug bool
}

// NewLogger creates a production JSON logger with ISO8601 timestamps.
func NewLogger(cfg Config, options ...zap.Option) (*zap.Logger, error) {
	c := zap.NewProductionConfig()
	c.EncoderConfig = zap.NewProductionEncoderConfig()
	c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if cfg.Debug {
		c.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		c.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	return c.Build(options...)
}
