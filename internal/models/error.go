package models

import "fmt"

// Stage identifies the pipeline step at which a file failed.
type Stage string

const (
	StageChecksum Stage = "checksum"
	StageStat     Stage = "stat"
	StageCatalog  Stage = "catalog"
	StageRelocate Stage = "relocate"
)

// IOError is returned when a file cannot be opened or read.
type IOError struct {
	Path string
	Op   string
	Err  error
}

// Error returns the error message for IOError.
func (e *IOError) Error() string {
	return fmt.Sprintf("io error during %s of %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError.
func NewIOError(path, op string, err error) *IOError {
	return &IOError{Path: path, Op: op, Err: err}
}

// IntegrityError is returned when repeated read passes over a file never
// produce the same digests within the configured attempt bound.
type IntegrityError struct {
	Path     string
	Attempts int
}

// Error returns the error message for IntegrityError.
func (e *IntegrityError) Error() string {
	return fmt.Sprintf("checksums of %s did not stabilise after %d attempts", e.Path, e.Attempts)
}

// StorageError wraps a catalog backend failure.
type StorageError struct {
	Op  string
	Err error
}

// Error returns the error message for StorageError.
func (e *StorageError) Error() string {
	return fmt.Sprintf("catalog %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError creates a new StorageError.
func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

// ProcessingError wraps the stage failure of a single file.
type ProcessingError struct {
	Path  string
	Stage Stage
	Err   error
}

// Error returns the error message for ProcessingError.
func (e *ProcessingError) Error() string {
	return fmt.Sprintf("processing %s failed at %s: %v", e.Path, e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *ProcessingError) Unwrap() error {
	return e.Err
}

// NewProcessingError creates a new ProcessingError.
func NewProcessingError(path string, stage Stage, err error) *ProcessingError {
	return &ProcessingError{Path: path, Stage: stage, Err: err}
}

// NotificationError describes a failed outbound notification. It never
// leaves the notifier package; it exists so failures are logged uniformly.
type NotificationError struct {
	URL        string
	Method     string
	StatusCode int
	Err        error
}

// Error returns the error message for NotificationError.
func (e *NotificationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("notification %s %s returned status %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("notification %s %s failed: %v", e.Method, e.URL, e.Err)
}

// Unwrap returns the underlying error.
func (e *NotificationError) Unwrap() error {
	return e.Err
}
