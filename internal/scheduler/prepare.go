package scheduler

import "github.com/aleister1102/ingestor/internal/common/filemanager"

// Prepare makes sure every input and output directory exists and, when
// enabled, leaves a permissions marker in each output directory. Failures
// are logged and the folder is still scanned; a missing input directory
// will surface again as an enumeration error.
func (s *Scheduler) Prepare() {
	for _, folder := range s.folders {
		for _, dir := range []string{folder.InPath, folder.OutPath} {
			if err := s.files.EnsureDirectory(dir, filemanager.DirPerm); err != nil {
				s.logger.Error().Err(err).Str("path", dir).Str("source", folder.Source).Msg("Failed to prepare watch directory")
			}
		}

		if !s.cfg.CreatePermissionMarker {
			continue
		}
		if _, err := s.files.WriteMarker(folder.OutPath); err != nil {
			s.logger.Warn().Err(err).Str("path", folder.OutPath).Msg("Failed to write permissions marker")
		}
	}
}
