package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/aleister1102/ingestor/internal/common/errorwrapper"
	"github.com/aleister1102/ingestor/internal/common/filemanager"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const maxConfigFileSize = 10 * 1024 * 1024 // 10MB

// GlobalConfig contains all configuration sections for the application
type GlobalConfig struct {
	Mode               string              `json:"mode,omitempty" yaml:"mode,omitempty" validate:"required,mode"`
	WatchFolders       []WatchFolderConfig `json:"watch_folders,omitempty" yaml:"watch_folders,omitempty" validate:"dive"`
	SchedulerConfig    SchedulerConfig     `json:"scheduler_config,omitempty" yaml:"scheduler_config,omitempty"`
	CatalogConfig      CatalogConfig       `json:"catalog_config,omitempty" yaml:"catalog_config,omitempty"`
	NotificationConfig NotificationConfig  `json:"notification_config,omitempty" yaml:"notification_config,omitempty"`
	LogConfig          LogConfig           `json:"log_config,omitempty" yaml:"log_config,omitempty"`
	ExportConfig       ExportConfig        `json:"export_config,omitempty" yaml:"export_config,omitempty"`
	MetricsConfig      MetricsConfig       `json:"metrics_config,omitempty" yaml:"metrics_config,omitempty"`
}

// NewDefaultGlobalConfig creates a new GlobalConfig with default values
func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		Mode:               "automated",
		WatchFolders:       []WatchFolderConfig{},
		SchedulerConfig:    NewDefaultSchedulerConfig(),
		CatalogConfig:      NewDefaultCatalogConfig(),
		NotificationConfig: NewDefaultNotificationConfig(),
		LogConfig:          NewDefaultLogConfig(),
		ExportConfig:       NewDefaultExportConfig(),
		MetricsConfig:      NewDefaultMetricsConfig(),
	}
}

// LoadGlobalConfig loads the configuration from a file or default locations.
// It determines the config file path using GetConfigPath, supports both JSON and YAML formats.
// YAML is preferred if the file extension is .yaml or .yml.
// Environment overrides are applied last.
func LoadGlobalConfig(providedPath string, logger zerolog.Logger) (*GlobalConfig, error) {
	cfg := NewDefaultGlobalConfig()

	if providedPath != "" {
		if _, err := os.Stat(providedPath); err != nil {
			return nil, errorwrapper.NewValidationError("config_file", providedPath, "config file does not exist")
		}
	}

	filePath := GetConfigPath(providedPath)
	if filePath == "" {
		applyEnvOverrides(cfg)
		return cfg, nil
	}

	fileManager := filemanager.NewFileManager(logger)
	data, err := fileManager.ReadFile(filePath, maxConfigFileSize)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to load config file content")
	}

	if err := parseConfigContent(data, filePath, cfg); err != nil {
		return nil, errorwrapper.WrapError(err, "failed to parse config content")
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// parseConfigContent parses the config content based on file extension
func parseConfigContent(data []byte, filePath string, cfg *GlobalConfig) error {
	if isYAMLFile(filepath.Ext(filePath)) {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return errorwrapper.NewError("failed to unmarshal YAML from '%s': %w", filePath, err)
		}
		return nil
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return errorwrapper.NewError("failed to unmarshal JSON from '%s': %w", filePath, err)
	}
	return nil
}

func isYAMLFile(ext string) bool {
	ext = strings.ToLower(ext)
	return ext == ".yaml" || ext == ".yml"
}

func applyEnvOverrides(cfg *GlobalConfig) {
	if conn := strings.TrimSpace(os.Getenv(EnvCatalogConnection)); conn != "" {
		cfg.CatalogConfig.ConnectionString = conn
	}
}
