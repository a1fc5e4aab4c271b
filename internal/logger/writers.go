package logger

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// WriterStrategy defines interface for creating log writers
type WriterStrategy interface {
	CreateWriter(output io.Writer) io.Writer
}

// JSONWriterStrategy writes zerolog's native JSON lines
type JSONWriterStrategy struct{}

func (jws *JSONWriterStrategy) CreateWriter(output io.Writer) io.Writer {
	return output
}

// ConsoleWriterStrategy creates human-readable, optionally colored writers
type ConsoleWriterStrategy struct {
	NoColor bool
}

func (cws *ConsoleWriterStrategy) CreateWriter(output io.Writer) io.Writer {
	return zerolog.ConsoleWriter{
		Out:        output,
		TimeFormat: time.RFC3339,
		NoColor:    cws.NoColor,
	}
}

// TextWriterStrategy is the console layout without colors
type TextWriterStrategy struct{}

func (tws *TextWriterStrategy) CreateWriter(output io.Writer) io.Writer {
	return zerolog.ConsoleWriter{
		Out:        output,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	}
}
