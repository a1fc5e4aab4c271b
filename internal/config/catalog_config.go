package config

// CatalogConfig defines where processed-file records are stored.
// The connection string is either a postgres:// URL or an sqlite
// location ("Data Source=path", "file:path" or a bare path).
type CatalogConfig struct {
	ConnectionString string `json:"connection_string,omitempty" yaml:"connection_string,omitempty" validate:"required"`
}

// NewDefaultCatalogConfig creates default catalog configuration
func NewDefaultCatalogConfig() CatalogConfig {
	return CatalogConfig{
		ConnectionString: DefaultCatalogConnectionString,
	}
}

// ExportConfig defines the parquet export of the catalog
type ExportConfig struct {
	OutputPath       string `json:"output_path,omitempty" yaml:"output_path,omitempty" validate:"required"`
	CompressionCodec string `json:"compression_codec,omitempty" yaml:"compression_codec,omitempty" validate:"omitempty,compression"`
}

// NewDefaultExportConfig creates default export configuration
func NewDefaultExportConfig() ExportConfig {
	return ExportConfig{
		OutputPath:       DefaultExportOutputPath,
		CompressionCodec: DefaultExportCompressionCodec,
	}
}

// MetricsConfig defines the optional prometheus listener
type MetricsConfig struct {
	ListenAddress string `json:"listen_address,omitempty" yaml:"listen_address,omitempty" validate:"omitempty,hostname_port"`
	Path          string `json:"path,omitempty" yaml:"path,omitempty" validate:"omitempty,startswith=/"`
}

// NewDefaultMetricsConfig creates default metrics configuration
func NewDefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		ListenAddress: DefaultMetricsListenAddress,
		Path:          DefaultMetricsPath,
	}
}

// Enabled reports whether the metrics listener should run.
func (mc MetricsConfig) Enabled() bool {
	return mc.ListenAddress != ""
}
