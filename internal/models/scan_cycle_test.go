package models

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCycleSummary_Totals(t *testing.T) {
	start := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	s := CycleSummary{
		StartedAt:  start,
		FinishedAt: start.Add(90 * time.Second),
		Folders: []FolderSummary{
			{Discovered: 3, Processed: 2, Failed: 1},
			{Error: "open /missing: no such file or directory"},
			{Discovered: 4, Processed: 4},
		},
	}

	discovered, processed, failed := s.Totals()
	assert.Equal(t, 7, discovered)
	assert.Equal(t, 6, processed)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, s.FolderErrors())
	assert.Equal(t, 90*time.Second, s.Duration())
}

func TestProcessingError_UnwrapsChain(t *testing.T) {
	ioErr := NewIOError("/in/a.txt", "open", os.ErrPermission)
	err := NewProcessingError("/in/a.txt", StageChecksum, ioErr)

	var target *IOError
	assert.True(t, errors.As(err, &target))
	assert.True(t, errors.Is(err, os.ErrPermission))
	assert.Contains(t, err.Error(), "checksum")

	storage := NewProcessingError("/in/a.txt", StageCatalog, NewStorageError("insert", errors.New("locked")))
	var storageErr *StorageError
	assert.True(t, errors.As(storage, &storageErr))
	assert.Equal(t, "insert", storageErr.Op)
}

func TestIntegrityError_Message(t *testing.T) {
	err := &IntegrityError{Path: "/in/growing.bin", Attempts: 3}
	assert.Contains(t, err.Error(), "/in/growing.bin")
	assert.Contains(t, err.Error(), "3 attempts")
}

func TestNotificationError_Message(t *testing.T) {
	withStatus := &NotificationError{URL: "http://h/x", Method: "POST", StatusCode: 500}
	assert.Equal(t, "notification POST http://h/x returned status 500", withStatus.Error())

	transport := &NotificationError{URL: "http://h/x", Method: "GET", Err: errors.New("refused")}
	assert.Contains(t, transport.Error(), "refused")
	assert.True(t, errors.Is(transport, transport.Err))
}
