package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/aleister1102/ingestor/internal/catalog"
	"github.com/aleister1102/ingestor/internal/checksum"
	"github.com/aleister1102/ingestor/internal/common/filemanager"
	"github.com/aleister1102/ingestor/internal/config"
	"github.com/aleister1102/ingestor/internal/metrics"
	"github.com/aleister1102/ingestor/internal/models"
	"github.com/aleister1102/ingestor/internal/notifier"
	"github.com/rs/zerolog"
)

// Checksummer computes the digests of one file.
type Checksummer interface {
	Compute(path string) (checksum.Checksums, error)
}

// Pipeline runs one discovered file through checksum, catalog insert,
// relocation and notification.
type Pipeline struct {
	checksums Checksummer
	catalog   catalog.Catalog
	notifier  notifier.Notifier
	files     *filemanager.FileManager
	metrics   *metrics.Recorder
	now       func() time.Time
	logger    zerolog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMetrics reports file outcomes to r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(p *Pipeline) {
		p.metrics = r
	}
}

// WithClock replaces the wall clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// New creates a Pipeline. n may be nil, in which case no notifications are
// sent.
func New(checksums Checksummer, cat catalog.Catalog, n notifier.Notifier, logger zerolog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		checksums: checksums,
		catalog:   cat,
		notifier:  n,
		files:     filemanager.NewFileManager(logger),
		now:       time.Now,
		logger:    logger.With().Str("module", "Pipeline").Logger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessFile ingests the file at path, which must live under
// folder.InPath. On success the returned record carries its catalog id and
// the file has been moved below folder.OutPath. Failures are returned as
// *models.ProcessingError; a file is never moved unless its record was
// stored. Once started, a file runs to completion even if ctx is cancelled;
// callers check for cancellation between files.
func (p *Pipeline) ProcessFile(ctx context.Context, path string, folder config.WatchFolderConfig) (*models.ProcessedFileRecord, error) {
	ctx = context.WithoutCancel(ctx)
	log := p.logger.With().Str("file", path).Str("source", folder.Source).Logger()

	sums, err := p.checksums.Compute(path)
	if err != nil {
		log.Error().Err(err).Msg("Failed to compute checksums")
		p.metrics.RecordFile(folder.Source, metrics.OutcomeChecksumFailed)
		return nil, models.NewProcessingError(path, models.StageChecksum, err)
	}
	p.metrics.RecordChecksumPasses(sums.Passes)

	info, err := p.files.GetFileInfo(path)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read file attributes")
		p.metrics.RecordFile(folder.Source, metrics.OutcomeStatFailed)
		return nil, models.NewProcessingError(path, models.StageStat, models.NewIOError(path, "stat", err))
	}

	record := &models.ProcessedFileRecord{
		Name:        filepath.Base(path),
		FileSize:    info.Size,
		Date:        info.CreatedAt,
		MD5:         sums.MD5,
		CRC32:       sums.CRC32,
		SHA1:        sums.SHA1,
		Source:      folder.Source,
		ProcessedAt: p.now().UTC(),
	}

	p.reportDuplicates(ctx, record, log)

	if _, err := p.catalog.Insert(ctx, record); err != nil {
		log.Error().Err(err).Msg("Failed to store processed file record, leaving file in place")
		p.metrics.RecordFile(folder.Source, metrics.OutcomeCatalogFailed)
		return nil, models.NewProcessingError(path, models.StageCatalog, err)
	}

	dest, err := p.relocate(path, folder)
	if err != nil {
		// The record stays; nothing reconciles it with the unmoved file.
		log.Error().Err(err).Int64("record_id", record.ID).Msg("File recorded in catalog but could not be moved")
		p.metrics.RecordFile(folder.Source, metrics.OutcomeOrphanedRecord)
		return record, models.NewProcessingError(path, models.StageRelocate, err)
	}

	log.Info().
		Int64("record_id", record.ID).
		Str("destination", dest).
		Int64("size", record.FileSize).
		Str("md5", record.MD5).
		Str("crc32", record.CRC32).
		Str("sha1", record.SHA1).
		Int("passes", sums.Passes).
		Msg("File ingested")
	p.metrics.RecordFile(folder.Source, metrics.OutcomeIngested)

	// Bounded by the notifier's client timeout.
	if p.notifier != nil && folder.API.Enabled() {
		p.notifier.Notify(ctx, *record, folder.API)
	}
	return record, nil
}

// reportDuplicates logs earlier records with the same content. It never
// blocks ingestion.
func (p *Pipeline) reportDuplicates(ctx context.Context, record *models.ProcessedFileRecord, log zerolog.Logger) {
	existing, err := p.catalog.FindBySHA1(ctx, record.SHA1)
	if err != nil {
		var storageErr *models.StorageError
		if !errors.As(err, &storageErr) {
			storageErr = models.NewStorageError("find by sha1", err)
		}
		log.Warn().Err(storageErr).Msg("Duplicate lookup failed")
		return
	}
	if len(existing) == 0 {
		return
	}

	log.Info().
		Int("previous_records", len(existing)).
		Int64("first_record_id", existing[0].ID).
		Str("first_name", existing[0].Name).
		Str("first_source", existing[0].Source).
		Msg("Content already ingested before")
	p.metrics.RecordDuplicate(record.Source)
}
