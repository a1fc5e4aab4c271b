package scheduler

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/aleister1102/ingestor/internal/common/contextutils"
	"github.com/aleister1102/ingestor/internal/config"
	"github.com/aleister1102/ingestor/internal/models"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RunCycle scans every watch folder once, in configured order, and
// processes each discovered file sequentially. A folder that cannot be
// enumerated and a file that fails are logged and skipped. Cancellation is
// observed before each folder and before each file.
func (s *Scheduler) RunCycle(ctx context.Context) models.CycleSummary {
	summary := models.CycleSummary{
		CycleID:   uuid.NewString(),
		StartedAt: time.Now(),
		Status:    models.ScanStatusCompleted,
		Folders:   make([]models.FolderSummary, 0, len(s.folders)),
	}
	log := s.logger.With().Str("cycle_id", summary.CycleID).Logger()
	log.Info().Int("watch_folders", len(s.folders)).Msg("Scanning watch folders for new files")

	for _, folder := range s.folders {
		if contextutils.CheckCancellationWithLog(ctx, s.stopChan, log, "scan folder "+folder.InPath).Cancelled {
			summary.Status = models.ScanStatusInterrupted
			break
		}

		folderSummary, interrupted := s.scanFolder(ctx, folder, log)
		summary.Folders = append(summary.Folders, folderSummary)
		if interrupted {
			summary.Status = models.ScanStatusInterrupted
			break
		}
	}

	summary.FinishedAt = time.Now()
	_, _, failed := summary.Totals()
	if summary.Status == models.ScanStatusCompleted && (failed > 0 || summary.FolderErrors() > 0) {
		summary.Status = models.ScanStatusPartialComplete
	}

	s.logCycle(summary, log)
	s.metrics.RecordCycle(string(summary.Status), summary.Duration())
	return summary
}

// scanFolder processes the files of one watch folder. It reports true when
// it stopped early because of cancellation.
func (s *Scheduler) scanFolder(ctx context.Context, folder config.WatchFolderConfig, log zerolog.Logger) (models.FolderSummary, bool) {
	result := models.FolderSummary{InPath: folder.InPath, OutPath: folder.OutPath, Source: folder.Source}
	log = log.With().Str("folder", folder.InPath).Str("source", folder.Source).Logger()

	s.logVolume(folder.OutPath, log)

	files, err := s.listFiles(folder.InPath, log)
	if err != nil {
		log.Error().Err(err).Msg("Error scanning watch folder")
		result.Error = err.Error()
		return result, false
	}
	result.Discovered = len(files)
	log.Info().Int("files", len(files)).Msg("Found files in watch folder (including subdirectories)")

	for _, path := range files {
		if contextutils.CheckCancellation(ctx, s.stopChan).Cancelled {
			log.Info().Int("remaining", len(files)-result.Processed-result.Failed).Msg("Scan interrupted, leaving remaining files for the next run")
			return result, true
		}

		// A file that has been started is not interrupted by a stop.
		if _, err := s.processor.ProcessFile(context.WithoutCancel(ctx), path, folder); err != nil {
			log.Error().Err(err).Str("file", path).Msg("Error processing file")
			result.Failed++
			continue
		}
		result.Processed++
	}
	return result, false
}

// listFiles returns the regular files below root, skipping any path that
// contains one of the ignored names. The whole tree is listed before any
// file is moved.
func (s *Scheduler) listFiles(root string, log zerolog.Logger) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			log.Warn().Err(err).Str("path", path).Msg("Skipping unreadable entry")
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if s.isIgnored(path) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (s *Scheduler) isIgnored(path string) bool {
	for _, name := range s.cfg.IgnoredDirectories {
		if name != "" && strings.Contains(path, name) {
			return true
		}
	}
	return false
}

func (s *Scheduler) logVolume(path string, log zerolog.Logger) {
	if s.volumes == nil {
		return
	}
	usage, err := s.volumes.Usage(path)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("Unable to read output volume usage")
		return
	}
	log.Info().
		Str("path", path).
		Str("free", humanize.Bytes(usage.Free)).
		Str("total", humanize.Bytes(usage.Total)).
		Float64("used_percent", usage.UsedPercent).
		Msg("Output volume usage")
}

func (s *Scheduler) logCycle(summary models.CycleSummary, log zerolog.Logger) {
	discovered, processed, failed := summary.Totals()
	event := log.Info()
	if summary.Status != models.ScanStatusCompleted {
		event = log.Warn()
	}
	event.
		Str("status", string(summary.Status)).
		Int("discovered", discovered).
		Int("processed", processed).
		Int("failed", failed).
		Int("folder_errors", summary.FolderErrors()).
		Str("duration", summary.Duration().Round(time.Millisecond).String()).
		Msg("Scan cycle finished")
}
