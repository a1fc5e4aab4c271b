package config

const (
	// Scheduler Defaults
	DefaultSchedulerScanIntervalMinutes = 5
	DefaultSchedulerMaxChecksumAttempts = 0 // unbounded
	DefaultSchedulerPermissionMarker    = true

	// Catalog Defaults
	DefaultCatalogConnectionString = "Data Source=database/ingestor.db"

	// Notification Defaults
	DefaultNotificationTimeoutSeconds = 30
	DefaultNotificationRetryAttempts  = 0
	DefaultNotificationUserAgent      = "ingestor/1.0"
	DefaultNotificationMaxRedirects   = 10
	DefaultAPIMethod                  = "POST"

	DefaultNotificationMaxResponseBodyBytes int64 = 1 << 20

	// Log Defaults
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultLogFile       = ""
	DefaultLogDir        = "logs"
	DefaultMaxLogSizeMB  = 100
	DefaultMaxLogBackups = 3

	// Export Defaults
	DefaultExportOutputPath       = "exports/processed_files.parquet"
	DefaultExportCompressionCodec = "zstd"

	// Metrics Defaults
	DefaultMetricsListenAddress = ""
	DefaultMetricsPath          = "/metrics"
)

// Environment variables consulted by the loader.
const (
	EnvConfigPath        = "INGESTOR_CONFIG_PATH"
	EnvCatalogConnection = "INGESTOR_CATALOG_CONNECTION"
)

// DefaultIgnoredDirectories are path fragments skipped during enumeration.
// They cover NAS thumbnail and recycle folders plus OS metadata.
var DefaultIgnoredDirectories = []string{
	"@eaDir",
	"#recycle",
	".DS_Store",
	"System Volume Information",
}
