package models

import "time"

// ScanStatus represents the outcome of one scan cycle.
type ScanStatus string

const (
	ScanStatusCompleted       ScanStatus = "COMPLETED"
	ScanStatusPartialComplete ScanStatus = "PARTIAL_COMPLETE"
	ScanStatusInterrupted     ScanStatus = "INTERRUPTED"
)

// FolderSummary holds per-folder counters of one cycle.
type FolderSummary struct {
	InPath     string
	OutPath    string
	Source     string
	Discovered int    // files found after ignore filtering
	Processed  int    // files that completed the pipeline
	Failed     int    // files whose pipeline returned an error
	Error      string // enumeration failure, empty when the folder was walked
}

// CycleSummary is the transient record of one scan pass over all watch
// folders. It is logged, never persisted.
type CycleSummary struct {
	CycleID    string
	StartedAt  time.Time
	FinishedAt time.Time
	Status     ScanStatus
	Folders    []FolderSummary
}

// Duration returns the wall time of the cycle.
func (s CycleSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// Totals sums the per-folder counters.
func (s CycleSummary) Totals() (discovered, processed, failed int) {
	for _, f := range s.Folders {
		discovered += f.Discovered
		processed += f.Processed
		failed += f.Failed
	}
	return discovered, processed, failed
}

// FolderErrors returns the number of folders that could not be enumerated.
func (s CycleSummary) FolderErrors() int {
	n := 0
	for _, f := range s.Folders {
		if f.Error != "" {
			n++
		}
	}
	return n
}
