package logger

import (
	"io"
	stdlog "log" // Standard Go log package, aliased to avoid conflict with zerolog field

	"github.com/aleister1102/ingestor/internal/common/errorwrapper"
	"github.com/aleister1102/ingestor/internal/config"
	"github.com/rs/zerolog"
)

// LoggerBuilder provides fluent interface for building loggers
type LoggerBuilder struct {
	config     LoggerConfig
	factory    *WriterFactory
	converter  *ConfigConverter
	convertErr error
}

// NewLoggerBuilder creates a new logger builder
func NewLoggerBuilder() *LoggerBuilder {
	return &LoggerBuilder{
		config:    DefaultLoggerConfig(),
		factory:   NewWriterFactory(),
		converter: NewConfigConverter(),
	}
}

// WithConfig sets the logger configuration
func (lb *LoggerBuilder) WithConfig(cfg config.LogConfig) *LoggerBuilder {
	lb.config, lb.convertErr = lb.converter.ConvertConfig(cfg)
	return lb
}

// WithConsoleOutput redirects console output, stderr by default.
func (lb *LoggerBuilder) WithConsoleOutput(w io.Writer) *LoggerBuilder {
	lb.factory.console = w
	return lb
}

// WithoutConsole disables the console writer.
func (lb *LoggerBuilder) WithoutConsole() *LoggerBuilder {
	lb.config.EnableConsole = false
	return lb
}

// Build creates the logger instance
func (lb *LoggerBuilder) Build() (*Logger, error) {
	if lb.convertErr != nil {
		return nil, lb.convertErr
	}
	if err := lb.validateConfig(); err != nil {
		return nil, err
	}

	writers, closers, err := lb.createWriters()
	if err != nil {
		return nil, err
	}
	if len(writers) == 0 {
		return nil, errorwrapper.NewError("no output writers configured")
	}

	zerologInstance := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(lb.config.Level).
		With().
		Timestamp().
		Logger()

	zerolog.SetGlobalLevel(lb.config.Level)
	lb.configureStandardLog(zerologInstance)

	return &Logger{
		zerolog: zerologInstance,
		config:  lb.config,
		closers: closers,
	}, nil
}

// validateConfig validates the logger configuration
func (lb *LoggerBuilder) validateConfig() error {
	if lb.config.EnableFile && lb.config.FilePath == "" && lb.config.DailyDir == "" {
		return errorwrapper.NewValidationError("file_path", lb.config.FilePath, "file path or directory required when file logging enabled")
	}

	if lb.config.MaxSizeMB <= 0 {
		return errorwrapper.NewValidationError("max_size_mb", lb.config.MaxSizeMB, "max size must be positive")
	}

	return nil
}

// createWriters creates the appropriate writers based on configuration
func (lb *LoggerBuilder) createWriters() ([]io.Writer, []io.Closer, error) {
	var writers []io.Writer
	var closers []io.Closer

	if lb.config.EnableConsole {
		writers = append(writers, lb.factory.CreateConsoleWriter(lb.config.Format))
	}

	if lb.config.EnableFile {
		fileWriter, closer, err := lb.factory.CreateFileWriter(lb.config)
		if err != nil {
			return nil, nil, errorwrapper.WrapError(err, "failed to create log file writer")
		}
		writers = append(writers, fileWriter)
		closers = append(closers, closer)
	}

	return writers, closers, nil
}

// configureStandardLog routes the standard log package through zerolog
func (lb *LoggerBuilder) configureStandardLog(logger zerolog.Logger) {
	stdlog.SetOutput(logger)
	stdlog.SetFlags(0)
}
