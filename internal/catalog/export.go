package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aleister1102/ingestor/internal/common/filemanager"
	"github.com/aleister1102/ingestor/internal/models"
	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"
)

// Lister is the read side of a Catalog needed for exports.
type Lister interface {
	ListAll(ctx context.Context) ([]models.ProcessedFileRecord, error)
}

// ParquetExporter dumps the catalog to a single parquet file.
type ParquetExporter struct {
	source Lister
	codec  string
	logger zerolog.Logger
}

// NewParquetExporter creates an exporter reading from source.
func NewParquetExporter(source Lister, codec string, logger zerolog.Logger) *ParquetExporter {
	return &ParquetExporter{
		source: source,
		codec:  codec,
		logger: logger.With().Str("module", "ParquetExporter").Logger(),
	}
}

// Export writes every record to outputPath and returns how many were
// written. The file is written next to its destination and renamed into
// place once complete.
func (e *ParquetExporter) Export(ctx context.Context, outputPath string) (int, error) {
	records, err := e.source.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	dir := filepath.Dir(outputPath)
	if err := filemanager.NewFileManager(e.logger).EnsureDirectory(dir, filemanager.DirPerm); err != nil {
		return 0, fmt.Errorf("preparing export directory '%s': %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(outputPath)+".*")
	if err != nil {
		e.logger.Error().Err(err).Str("path", outputPath).Msg("Failed to create export file")
		return 0, fmt.Errorf("creating export file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	writer := parquet.NewGenericWriter[models.ProcessedFileRecord](tmp, e.compressionOption())
	if _, err := writer.Write(records); err != nil {
		tmp.Close()
		e.logger.Error().Err(err).Msg("Failed to write records to Parquet file")
		return 0, fmt.Errorf("writing parquet records: %w", err)
	}
	if err := writer.Close(); err != nil {
		tmp.Close()
		e.logger.Error().Err(err).Msg("Failed to close Parquet writer")
		return 0, fmt.Errorf("closing Parquet writer: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("closing export file: %w", err)
	}

	if err := os.Rename(tmpPath, outputPath); err != nil {
		return 0, fmt.Errorf("moving export into place: %w", err)
	}

	e.logger.Info().Int("records", len(records)).Str("path", outputPath).Str("codec", e.codec).Msg("Catalog exported")
	return len(records), nil
}

func (e *ParquetExporter) compressionOption() parquet.WriterOption {
	switch strings.ToLower(e.codec) {
	case "snappy":
		return parquet.Compression(&parquet.Snappy)
	case "gzip":
		return parquet.Compression(&parquet.Gzip)
	case "zstd", "":
		return parquet.Compression(&parquet.Zstd)
	case "none", "uncompressed":
		return parquet.Compression(&parquet.Uncompressed)
	default:
		e.logger.Warn().Str("codec", e.codec).Msg("Unsupported compression codec string, defaulting to Zstd")
		return parquet.Compression(&parquet.Zstd)
	}
}
