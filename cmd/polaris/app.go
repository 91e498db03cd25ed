package main

import (
	"context"
	"fmt"

	"trustmark-hq/polaris/pkg/catalog"
	"trustmark-hq/polaris/pkg/cli"
	"trustmark-hq/polaris/pkg/config"
	"trustmark-hq/polaris/pkg/evidence"
	"trustmark-hq/polaris/pkg/evidence/recorder"
	"trustmark-hq/polaris/pkg/evidence/storage"
	"trustmark-hq/polaris/pkg/lineage"
	"trustmark-hq/polaris/pkg/pipeline"
	"trustmark-hq/polaris/pkg/policy"
	"trustmark-hq/polaris/pkg/quality"
	"trustmark-hq/polaris/pkg/telemetry/logging"
	"trustmark-hq/polaris/pkg/telemetry/metrics"
	"trustmark-hq/polaris/pkg/telemetry/tracing"
	"trustmark-hq/polaris/pkg/warehouse"
)

// app bundles the assembled pipeline and everything that needs closing.
type app struct {
	cfg      *config.Config
	catalog  *catalog.Catalog
	executor *warehouse.Executor
	store    evidence.Storage
	recorder *recorder.Recorder
	tracer   *tracing.Tracer
	pipeline *pipeline.Pipeline
}

// loadConfigAndLogging is the shared prologue of every command: load the
// config file (with environment overrides) and install structured logging.
func loadConfigAndLogging() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError("", err.Error())
	}

	level := cfg.Telemetry.Logging.Level
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Config{
		Level:     level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
		RedactPII: cfg.Telemetry.Logging.RedactPII,
	})
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}
	logger.Install()
	return cfg, nil
}

// newApp assembles the full pipeline stack from configuration. Callers must
// Close it.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	executor, err := warehouse.Open(cfg.Warehouse.Path)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, catalog: cat, executor: executor}

	if cfg.Evidence.Enabled {
		store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{
			Path:         cfg.Evidence.SQLite.Path,
			WALMode:      cfg.Evidence.SQLite.WALMode,
			BusyTimeout:  cfg.Evidence.SQLite.BusyTimeout,
			MaxOpenConns: cfg.Evidence.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.Evidence.SQLite.MaxIdleConns,
		})
		if err != nil {
			executor.Close()
			return nil, fmt.Errorf("failed to open evidence store: %w", err)
		}
		a.store = store
		a.recorder = recorder.NewRecorder(store, &recorder.Config{
			Enabled:      true,
			AsyncBuffer:  cfg.Evidence.Recorder.AsyncBuffer,
			WriteTimeout: cfg.Evidence.Recorder.WriteTimeout,
			ArtifactDir:  cfg.Evidence.Recorder.ArtifactDir,
		})
	}

	tracer, err := tracing.New(ctx, &tracing.Config{
		Enabled:     cfg.Telemetry.Tracing.Enabled,
		ServiceName: cfg.Telemetry.Tracing.ServiceName,
		Endpoint:    cfg.Telemetry.Tracing.Endpoint,
		SampleRate:  cfg.Telemetry.Tracing.SampleRate,
	})
	if err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracer = tracer

	collector := metrics.NewCollector(&metrics.Config{
		Enabled:   cfg.Telemetry.Metrics.Enabled,
		Namespace: cfg.Telemetry.Metrics.Namespace,
		Subsystem: cfg.Telemetry.Metrics.Subsystem,
	}, nil)

	a.pipeline = pipeline.New(pipeline.Options{
		Catalog: cat,
		Policy: policy.NewClient(policy.ClientConfig{
			URL:     cfg.Policy.URL,
			Timeout: cfg.Policy.Timeout,
		}),
		Gate:     quality.NewGate(executor.DB(), cfg.Quality.AllowUnpromoted),
		Executor: executor,
		Lineage: lineage.NewEmitter(lineage.Config{
			Dir:     cfg.Lineage.Dir,
			URL:     cfg.Lineage.URL,
			Timeout: cfg.Lineage.Timeout,
		}),
		Recorder:     a.recorder,
		Metrics:      collector,
		Tracer:       tracer,
		ExportDir:    cfg.Export.Dir,
		QueryTimeout: cfg.Warehouse.QueryTimeout,
	})
	return a, nil
}

// Close drains the recorder, then releases stores and the tracer.
func (a *app) Close(ctx context.Context) {
	if a.recorder != nil {
		a.recorder.Close()
	}
	if a.store != nil {
		a.store.Close()
	}
	if a.executor != nil {
		a.executor.Close()
	}
	if a.tracer != nil {
		a.tracer.Shutdown(ctx)
	}
}

// openEvidenceStore opens just the evidence store for read-side commands.
func openEvidenceStore(cfg *config.Config) (evidence.Storage, error) {
	if !cfg.Evidence.Enabled {
		return nil, cli.NewConfigError("evidence.enabled", "evidence recording is disabled")
	}
	return storage.NewSQLiteStorage(&storage.SQLiteConfig{
		Path:         cfg.Evidence.SQLite.Path,
		WALMode:      cfg.Evidence.SQLite.WALMode,
		BusyTimeout:  cfg.Evidence.SQLite.BusyTimeout,
		MaxOpenConns: cfg.Evidence.SQLite.MaxOpenConns,
		MaxIdleConns: cfg.Evidence.SQLite.MaxIdleConns,
	})
}
