package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified
// path, applies defaults and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Variables follow the naming
// convention POLARIS_SECTION_FIELD (e.g., POLARIS_WAREHOUSE_PATH) and
// always take precedence over file-based configuration.
//
// The loading sequence is:
//  1. Load YAML from file
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	// Warehouse overrides
	if val := os.Getenv("POLARIS_WAREHOUSE_PATH"); val != "" {
		cfg.Warehouse.Path = val
	}
	if val := os.Getenv("POLARIS_WAREHOUSE_QUERY_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Warehouse.QueryTimeout = d
		}
	}

	// Catalog overrides
	if val := os.Getenv("POLARIS_CATALOG_PATH"); val != "" {
		cfg.Catalog.Path = val
	}
	if val := os.Getenv("POLARIS_CATALOG_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Catalog.Watch = b
		}
	}

	// Policy overrides
	if val := os.Getenv("POLARIS_POLICY_URL"); val != "" {
		cfg.Policy.URL = val
	}
	if val := os.Getenv("POLARIS_POLICY_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Policy.Timeout = d
		}
	}

	// Quality overrides
	if val := os.Getenv("POLARIS_QUALITY_ALLOW_UNPROMOTED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Quality.AllowUnpromoted = b
		}
	}

	// Evidence overrides
	if val := os.Getenv("POLARIS_EVIDENCE_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Evidence.Enabled = b
		}
	}
	if val := os.Getenv("POLARIS_EVIDENCE_SQLITE_PATH"); val != "" {
		cfg.Evidence.SQLite.Path = val
	}
	if val := os.Getenv("POLARIS_EVIDENCE_ARTIFACT_DIR"); val != "" {
		cfg.Evidence.Recorder.ArtifactDir = val
	}
	if val := os.Getenv("POLARIS_EVIDENCE_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Evidence.Retention.Days = i
		}
	}
	if val := os.Getenv("POLARIS_EVIDENCE_RETENTION_SCHEDULE"); val != "" {
		cfg.Evidence.Retention.Schedule = val
	}

	// Lineage overrides
	if val := os.Getenv("POLARIS_LINEAGE_URL"); val != "" {
		cfg.Lineage.URL = val
	}
	if val := os.Getenv("POLARIS_LINEAGE_DIR"); val != "" {
		cfg.Lineage.Dir = val
	}

	// Export overrides
	if val := os.Getenv("POLARIS_EXPORT_DIR"); val != "" {
		cfg.Export.Dir = val
	}

	// Telemetry overrides
	if val := os.Getenv("POLARIS_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("POLARIS_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("POLARIS_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("POLARIS_TELEMETRY_METRICS_LISTEN_ADDRESS"); val != "" {
		cfg.Telemetry.Metrics.ListenAddress = val
	}
	if val := os.Getenv("POLARIS_TELEMETRY_TRACING_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Tracing.Enabled = b
		}
	}
	if val := os.Getenv("POLARIS_TELEMETRY_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}
	if val := os.Getenv("POLARIS_TELEMETRY_TRACING_SAMPLE_RATE"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRate = f
		}
	}
}
