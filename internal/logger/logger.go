package logger

import (
	"errors"
	"io"

	"github.com/aleister1102/ingestor/internal/config"
	"github.com/rs/zerolog"
)

// Logger represents the main logger with configuration
type Logger struct {
	zerolog zerolog.Logger
	config  LoggerConfig
	closers []io.Closer
}

// GetZerolog returns the underlying zerolog instance
func (l *Logger) GetZerolog() *zerolog.Logger {
	return &l.zerolog
}

// Config returns the effective configuration.
func (l *Logger) Config() LoggerConfig {
	return l.config
}

// Close flushes and closes any log files.
func (l *Logger) Close() error {
	var errs []error
	for _, c := range l.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	l.closers = nil
	return errors.Join(errs...)
}

// New creates a logger from application config.
func New(cfg config.LogConfig) (*Logger, error) {
	return NewLoggerBuilder().WithConfig(cfg).Build()
}
