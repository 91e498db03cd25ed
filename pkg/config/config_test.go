package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "polaris.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
warehouse:
  path: /tmp/wh.db
catalog:
  path: /tmp/catalog
evidence:
  enabled: true
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.Warehouse.Path != "/tmp/wh.db" {
		t.Errorf("Warehouse.Path = %q", cfg.Warehouse.Path)
	}
	if cfg.Warehouse.QueryTimeout != 30*time.Second {
		t.Errorf("QueryTimeout default = %v", cfg.Warehouse.QueryTimeout)
	}
	if cfg.Evidence.SQLite.Path != DefaultEvidencePath {
		t.Errorf("Evidence.SQLite.Path default = %q", cfg.Evidence.SQLite.Path)
	}
	if cfg.Evidence.Retention.Days != DefaultRetentionDays {
		t.Errorf("Retention.Days default = %d", cfg.Evidence.Retention.Days)
	}
	if cfg.Telemetry.Logging.Level != "info" {
		t.Errorf("Logging.Level default = %q", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/polaris.yaml"); err == nil {
		t.Error("LoadConfig() with missing file must fail")
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := writeConfigFile(t, "warehouse: [not a mapping")
	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig() with invalid YAML must fail")
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Policy.URL = "not-a-url"
	cfg.Telemetry.Logging.Level = "verbose"
	cfg.Telemetry.Tracing.SampleRate = 2.0

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() = nil, want errors")
	}

	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error type = %T", err)
	}
	if len(verr.Errors) != 3 {
		t.Errorf("collected %d errors, want 3: %v", len(verr.Errors), verr)
	}
}

func TestValidateCronSchedule(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Evidence.Retention.Schedule = "every day at noon"

	err := Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "evidence.retention.schedule") {
		t.Errorf("invalid cron schedule not caught: %v", err)
	}
}

func TestValidateDisabledEvidenceSkipsChecks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Evidence.Enabled = false
	cfg.Evidence.SQLite.Path = ""

	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() error for disabled evidence: %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfigFile(t, `
warehouse:
  path: /tmp/wh.db
`)

	t.Setenv("POLARIS_WAREHOUSE_PATH", "/override/wh.db")
	t.Setenv("POLARIS_QUALITY_ALLOW_UNPROMOTED", "true")
	t.Setenv("POLARIS_EVIDENCE_RETENTION_DAYS", "30")
	t.Setenv("POLARIS_TELEMETRY_TRACING_SAMPLE_RATE", "0.25")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error: %v", err)
	}

	if cfg.Warehouse.Path != "/override/wh.db" {
		t.Errorf("Warehouse.Path = %q, env override not applied", cfg.Warehouse.Path)
	}
	if !cfg.Quality.AllowUnpromoted {
		t.Error("Quality.AllowUnpromoted override not applied")
	}
	if cfg.Evidence.Retention.Days != 30 {
		t.Errorf("Retention.Days = %d, want 30", cfg.Evidence.Retention.Days)
	}
	if cfg.Telemetry.Tracing.SampleRate != 0.25 {
		t.Errorf("SampleRate = %v, want 0.25", cfg.Telemetry.Tracing.SampleRate)
	}
}

func TestEnvOverridesRevalidated(t *testing.T) {
	path := writeConfigFile(t, `
warehouse:
  path: /tmp/wh.db
`)
	t.Setenv("POLARIS_POLICY_URL", "ftp://policy.internal")

	if _, err := LoadConfigWithEnvOverrides(path); err == nil {
		t.Error("invalid env override must fail validation")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if !cfg.Evidence.Enabled {
		t.Error("evidence must be enabled by default")
	}
	if !cfg.Evidence.SQLite.WALMode {
		t.Error("WAL mode must be enabled by default")
	}
	if !cfg.Telemetry.Logging.RedactPII {
		t.Error("PII redaction must be enabled by default")
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}
