package models

import "time"

// ProcessedFileRecord is one catalog entry, created when a file completes
// the ingestion pipeline. Records are never updated or deleted.
type ProcessedFileRecord struct {
	ID          int64     `db:"id" json:"id" parquet:"id"`
	Name        string    `db:"name" json:"name" parquet:"name,zstd"`
	FileSize    int64     `db:"file_size" json:"fileSize" parquet:"file_size"`
	Date        time.Time `db:"date" json:"date" parquet:"date,timestamp"`
	MD5         string    `db:"md5" json:"md5" parquet:"md5,zstd"`
	CRC32       string    `db:"crc32" json:"crc32" parquet:"crc32"`
	SHA1        string    `db:"sha1" json:"sha1" parquet:"sha1,zstd"`
	Source      string    `db:"source" json:"source" parquet:"source,dict"`
	ProcessedAt time.Time `db:"processed_at" json:"processedAt" parquet:"processed_at,timestamp"`
}

// Column size limits of the catalog schema.
const (
	MaxNameLength   = 255
	MaxSourceLength = 100
)
