package notifier

import (
	"time"

	"github.com/aleister1102/ingestor/internal/models"
)

// FilePayload is the JSON body sent for POST and PUT notifications.
type FilePayload struct {
	FileName    string    `json:"fileName"`
	FileSize    int64     `json:"fileSize"`
	Date        time.Time `json:"date"`
	MD5         string    `json:"md5"`
	CRC32       string    `json:"crc32"`
	SHA1        string    `json:"sha1"`
	Source      string    `json:"source"`
	ProcessedAt time.Time `json:"processedAt"`
}

// NewFilePayload builds the payload for a catalog record.
func NewFilePayload(record models.ProcessedFileRecord) FilePayload {
	return FilePayload{
		FileName:    record.Name,
		FileSize:    record.FileSize,
		Date:        record.Date,
		MD5:         record.MD5,
		CRC32:       record.CRC32,
		SHA1:        record.SHA1,
		Source:      record.Source,
		ProcessedAt: record.ProcessedAt,
	}
}
