package logger

import (
	"io"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// WriterFactory creates writers based on format
type WriterFactory struct {
	strategies map[LogFormat]WriterStrategy
	console    io.Writer
}

// NewWriterFactory creates a new writer factory
func NewWriterFactory() *WriterFactory {
	return &WriterFactory{
		strategies: map[LogFormat]WriterStrategy{
			FormatJSON:    &JSONWriterStrategy{},
			FormatConsole: &ConsoleWriterStrategy{NoColor: false},
			FormatText:    &TextWriterStrategy{},
		},
		console: os.Stderr,
	}
}

// CreateConsoleWriter creates a console writer
func (wf *WriterFactory) CreateConsoleWriter(format LogFormat) io.Writer {
	strategy, exists := wf.strategies[format]
	if !exists {
		strategy = &ConsoleWriterStrategy{NoColor: false}
	}
	return strategy.CreateWriter(wf.console)
}

// CreateFileWriter creates a rotating file writer. A fixed FilePath wins over
// DailyDir. The returned closer releases the open file.
func (wf *WriterFactory) CreateFileWriter(config LoggerConfig) (io.Writer, io.Closer, error) {
	var sink io.WriteCloser

	if config.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(config.FilePath), 0755); err != nil {
			return nil, nil, err
		}
		sink = &lumberjack.Logger{
			Filename:   config.FilePath,
			MaxSize:    config.MaxSizeMB,
			LocalTime:  true,
			MaxBackups: config.MaxBackups,
		}
	} else {
		if err := os.MkdirAll(config.DailyDir, 0755); err != nil {
			return nil, nil, err
		}
		sink = newDailyFileWriter(config.DailyDir, config.MaxSizeMB, config.MaxBackups)
	}

	// Files never get ANSI colors.
	if config.Format == FormatConsole {
		return (&ConsoleWriterStrategy{NoColor: true}).CreateWriter(sink), sink, nil
	}

	strategy, exists := wf.strategies[config.Format]
	if !exists {
		strategy = &JSONWriterStrategy{}
	}
	return strategy.CreateWriter(sink), sink, nil
}
