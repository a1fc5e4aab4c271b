package config

import "time"

// SchedulerConfig defines configuration for the scan loop
type SchedulerConfig struct {
	ScanIntervalMinutes    int      `json:"scan_interval_minutes,omitempty" yaml:"scan_interval_minutes,omitempty" validate:"min=1"`
	IgnoredDirectories     []string `json:"ignored_directories,omitempty" yaml:"ignored_directories,omitempty" validate:"dive,required"`
	MaxChecksumAttempts    int      `json:"max_checksum_attempts,omitempty" yaml:"max_checksum_attempts,omitempty" validate:"min=0"`
	CreatePermissionMarker bool     `json:"create_permission_marker" yaml:"create_permission_marker"`
}

// NewDefaultSchedulerConfig creates default scheduler configuration
func NewDefaultSchedulerConfig() SchedulerConfig {
	ignored := make([]string, len(DefaultIgnoredDirectories))
	copy(ignored, DefaultIgnoredDirectories)

	return SchedulerConfig{
		ScanIntervalMinutes:    DefaultSchedulerScanIntervalMinutes,
		IgnoredDirectories:     ignored,
		MaxChecksumAttempts:    DefaultSchedulerMaxChecksumAttempts,
		CreatePermissionMarker: DefaultSchedulerPermissionMarker,
	}
}

// ScanInterval returns the pause between two scan cycles.
func (sc SchedulerConfig) ScanInterval() time.Duration {
	return time.Duration(sc.ScanIntervalMinutes) * time.Minute
}
