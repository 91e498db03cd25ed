package config

import (
	"time"
)

// Config is the root configuration for the query pipeline.
type Config struct {
	// Warehouse configures the analytical database connection.
	Warehouse WarehouseConfig `yaml:"warehouse"`

	// Catalog configures the metric and data product catalog.
	Catalog CatalogConfig `yaml:"catalog"`

	// Policy configures ABAC policy evaluation.
	Policy PolicyConfig `yaml:"policy"`

	// Quality configures the data quality gate.
	Quality QualityConfig `yaml:"quality"`

	// Evidence configures the immutable evidence store.
	Evidence EvidenceConfig `yaml:"evidence"`

	// Lineage configures lineage event emission.
	Lineage LineageConfig `yaml:"lineage"`

	// Export configures result export.
	Export ExportConfig `yaml:"export"`

	// Telemetry configures logging, metrics, tracing and health checks.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// WarehouseConfig contains settings for the analytical database.
type WarehouseConfig struct {
	// Path is the warehouse database file path.
	Path string `yaml:"path"`

	// QueryTimeout bounds a single warehouse query.
	QueryTimeout time.Duration `yaml:"query_timeout"`

	// MaxOpenConns limits concurrent warehouse connections.
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns limits idle warehouse connections.
	MaxIdleConns int `yaml:"max_idle_conns"`
}

// CatalogConfig contains settings for the metric catalog.
type CatalogConfig struct {
	// Path is the catalog directory holding metrics.yaml and
	// data_products.yaml.
	Path string `yaml:"path"`

	// Watch reloads the catalog when the file changes.
	Watch bool `yaml:"watch"`
}

// PolicyConfig contains settings for policy evaluation.
type PolicyConfig struct {
	// URL is the remote policy service endpoint. Empty means the
	// built-in local evaluator is used exclusively.
	URL string `yaml:"url"`

	// Timeout bounds a remote policy evaluation call.
	Timeout time.Duration `yaml:"timeout"`
}

// QualityConfig contains settings for the data quality gate.
type QualityConfig struct {
	// AllowUnpromoted permits querying data products absent from the
	// promotion registry when their backing table holds rows. Intended
	// for development environments only.
	AllowUnpromoted bool `yaml:"allow_unpromoted"`
}

// EvidenceConfig contains settings for the evidence store.
type EvidenceConfig struct {
	// Enabled turns evidence recording on.
	Enabled bool `yaml:"enabled"`

	// SQLite configures the evidence database.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Recorder configures the async evidence writer.
	Recorder RecorderConfig `yaml:"recorder"`

	// Retention configures pruning of old evidence.
	Retention RetentionConfig `yaml:"retention"`
}

// SQLiteConfig contains settings for the evidence SQLite database.
type SQLiteConfig struct {
	// Path is the evidence database file path.
	Path string `yaml:"path"`

	// WALMode enables write-ahead logging.
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is the SQLite busy timeout.
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// MaxOpenConns limits concurrent evidence connections.
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns limits idle evidence connections.
	MaxIdleConns int `yaml:"max_idle_conns"`
}

// RecorderConfig contains settings for the async evidence recorder.
type RecorderConfig struct {
	// AsyncBuffer is the channel capacity for pending records.
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout bounds the wait to enqueue a record.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// ArtifactDir is where per-record JSON artifacts are written.
	ArtifactDir string `yaml:"artifact_dir"`
}

// RetentionConfig contains settings for evidence retention.
type RetentionConfig struct {
	// Days is the retention period; 0 keeps evidence forever.
	Days int `yaml:"days"`

	// Schedule is a cron expression for automatic pruning.
	Schedule string `yaml:"schedule"`

	// ArchiveBeforeDelete exports records before deletion.
	ArchiveBeforeDelete bool `yaml:"archive_before_delete"`

	// ArchivePath is the archive directory.
	ArchivePath string `yaml:"archive_path"`

	// MaxRecords caps the evidence store size; 0 means unlimited.
	MaxRecords int64 `yaml:"max_records"`
}

// LineageConfig contains settings for lineage emission.
type LineageConfig struct {
	// Dir is where lineage event artifacts are written.
	Dir string `yaml:"dir"`

	// URL is the lineage collector endpoint. Empty disables remote
	// emission; local artifacts are still written.
	URL string `yaml:"url"`

	// Timeout bounds a collector POST.
	Timeout time.Duration `yaml:"timeout"`
}

// ExportConfig contains settings for result export.
type ExportConfig struct {
	// Dir is where CSV exports are written.
	Dir string `yaml:"dir"`
}

// TelemetryConfig groups observability settings.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
	Health  HealthConfig  `yaml:"health"`
}

// LoggingConfig contains settings for structured logging.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	Level string `yaml:"level"`

	// Format is the output format ("json", "text").
	Format string `yaml:"format"`

	// AddSource includes file and line number in logs.
	AddSource bool `yaml:"add_source"`

	// RedactPII scrubs consumer PII from log values.
	RedactPII bool `yaml:"redact_pii"`
}

// MetricsConfig contains settings for Prometheus metrics.
type MetricsConfig struct {
	// Enabled turns metric recording on.
	Enabled bool `yaml:"enabled"`

	// Namespace is the Prometheus metric namespace.
	Namespace string `yaml:"namespace"`

	// Subsystem is the Prometheus metric subsystem.
	Subsystem string `yaml:"subsystem"`

	// ListenAddress is the metrics HTTP listen address.
	ListenAddress string `yaml:"listen_address"`

	// Path is the metrics endpoint path.
	Path string `yaml:"path"`
}

// TracingConfig contains settings for OpenTelemetry tracing.
type TracingConfig struct {
	// Enabled turns tracing on.
	Enabled bool `yaml:"enabled"`

	// ServiceName identifies this service in traces.
	ServiceName string `yaml:"service_name"`

	// Endpoint is the OTLP gRPC collector endpoint.
	Endpoint string `yaml:"endpoint"`

	// SampleRate is the trace sampling ratio in [0, 1].
	SampleRate float64 `yaml:"sample_rate"`
}

// HealthConfig contains settings for health checks.
type HealthConfig struct {
	// CheckTimeout bounds each component health check.
	CheckTimeout time.Duration `yaml:"check_timeout"`
}
