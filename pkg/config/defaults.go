package config

import (
	"time"
)

// Default values applied to unset fields.
const (
	DefaultWarehousePath    = "data/warehouse.db"
	DefaultCatalogPath      = "config/catalog"
	DefaultEvidencePath     = "data/evidence.db"
	DefaultArtifactDir      = "artifacts/evidence"
	DefaultLineageDir       = "artifacts/lineage"
	DefaultExportDir        = "artifacts/exports"
	DefaultArchivePath      = "data/archives"
	DefaultRetentionDays    = 365
	DefaultPruneSchedule    = "0 3 * * *"
	DefaultAsyncBuffer      = 1000
	DefaultMetricsNamespace = "trustmark"
	DefaultMetricsSubsystem = "polaris"
)

// ApplyDefaults fills in default values for unset configuration fields.
// It never overrides a value the user has set explicitly.
func ApplyDefaults(cfg *Config) {
	// Warehouse
	if cfg.Warehouse.Path == "" {
		cfg.Warehouse.Path = DefaultWarehousePath
	}
	if cfg.Warehouse.QueryTimeout == 0 {
		cfg.Warehouse.QueryTimeout = 30 * time.Second
	}
	if cfg.Warehouse.MaxOpenConns == 0 {
		cfg.Warehouse.MaxOpenConns = 4
	}
	if cfg.Warehouse.MaxIdleConns == 0 {
		cfg.Warehouse.MaxIdleConns = 2
	}

	// Catalog
	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = DefaultCatalogPath
	}

	// Policy
	if cfg.Policy.Timeout == 0 {
		cfg.Policy.Timeout = 5 * time.Second
	}

	// Evidence
	if cfg.Evidence.SQLite.Path == "" {
		cfg.Evidence.SQLite.Path = DefaultEvidencePath
	}
	if cfg.Evidence.SQLite.BusyTimeout == 0 {
		cfg.Evidence.SQLite.BusyTimeout = 5 * time.Second
	}
	if cfg.Evidence.SQLite.MaxOpenConns == 0 {
		cfg.Evidence.SQLite.MaxOpenConns = 4
	}
	if cfg.Evidence.SQLite.MaxIdleConns == 0 {
		cfg.Evidence.SQLite.MaxIdleConns = 2
	}
	if cfg.Evidence.Recorder.AsyncBuffer == 0 {
		cfg.Evidence.Recorder.AsyncBuffer = DefaultAsyncBuffer
	}
	if cfg.Evidence.Recorder.WriteTimeout == 0 {
		cfg.Evidence.Recorder.WriteTimeout = 5 * time.Second
	}
	if cfg.Evidence.Recorder.ArtifactDir == "" {
		cfg.Evidence.Recorder.ArtifactDir = DefaultArtifactDir
	}
	if cfg.Evidence.Retention.Days == 0 {
		cfg.Evidence.Retention.Days = DefaultRetentionDays
	}
	if cfg.Evidence.Retention.Schedule == "" {
		cfg.Evidence.Retention.Schedule = DefaultPruneSchedule
	}
	if cfg.Evidence.Retention.ArchivePath == "" {
		cfg.Evidence.Retention.ArchivePath = DefaultArchivePath
	}

	// Lineage
	if cfg.Lineage.Dir == "" {
		cfg.Lineage.Dir = DefaultLineageDir
	}
	if cfg.Lineage.Timeout == 0 {
		cfg.Lineage.Timeout = 5 * time.Second
	}

	// Export
	if cfg.Export.Dir == "" {
		cfg.Export.Dir = DefaultExportDir
	}

	// Telemetry
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = "info"
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = "json"
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if cfg.Telemetry.Metrics.ListenAddress == "" {
		cfg.Telemetry.Metrics.ListenAddress = ":9090"
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = "/metrics"
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = "polaris"
	}
	if cfg.Telemetry.Tracing.Endpoint == "" {
		cfg.Telemetry.Tracing.Endpoint = "localhost:4317"
	}
	if cfg.Telemetry.Tracing.SampleRate == 0 {
		cfg.Telemetry.Tracing.SampleRate = 1.0
	}
	if cfg.Telemetry.Health.CheckTimeout == 0 {
		cfg.Telemetry.Health.CheckTimeout = 5 * time.Second
	}
}

// DefaultConfig returns a configuration with all defaults applied and
// evidence recording enabled.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Evidence.Enabled = true
	cfg.Evidence.SQLite.WALMode = true
	cfg.Evidence.Retention.ArchiveBeforeDelete = true
	cfg.Telemetry.Logging.RedactPII = true
	cfg.Telemetry.Metrics.Enabled = true
	ApplyDefaults(cfg)
	return cfg
}
