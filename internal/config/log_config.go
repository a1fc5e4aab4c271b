package config

// LogConfig defines configuration for logging
type LogConfig struct {
	LogFile       string `json:"log_file,omitempty" yaml:"log_file,omitempty"`
	LogDir        string `json:"log_dir,omitempty" yaml:"log_dir,omitempty"` // daily YYYYMMDD.log files, ignored when log_file is set
	LogFormat     string `json:"log_format,omitempty" yaml:"log_format,omitempty" validate:"omitempty,logformat"`
	LogLevel      string `json:"log_level,omitempty" yaml:"log_level,omitempty" validate:"omitempty,loglevel"`
	MaxLogBackups int    `json:"max_log_backups,omitempty" yaml:"max_log_backups,omitempty" validate:"min=0"`
	MaxLogSizeMB  int    `json:"max_log_size_mb,omitempty" yaml:"max_log_size_mb,omitempty" validate:"min=0"`
}

// NewDefaultLogConfig creates default log configuration
func NewDefaultLogConfig() LogConfig {
	return LogConfig{
		LogFile:       DefaultLogFile,
		LogDir:        DefaultLogDir,
		LogFormat:     DefaultLogFormat,
		LogLevel:      DefaultLogLevel,
		MaxLogBackups: DefaultMaxLogBackups,
		MaxLogSizeMB:  DefaultMaxLogSizeMB,
	}
}
