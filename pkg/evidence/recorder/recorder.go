package recorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"trustmark-hq/polaris/pkg/evidence"
)

// Config contains configuration for the evidence recorder.
type Config struct {
	// Enabled enables evidence recording.
	Enabled bool

	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 1000
	AsyncBuffer int

	// WriteTimeout is the timeout for writing evidence to storage.
	// Default: 5 seconds
	WriteTimeout time.Duration

	// ArtifactDir is the directory for per-record JSON artifacts.
	// Empty disables artifact files; the storage backend still persists
	// the record.
	ArtifactDir string
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:      true,
		AsyncBuffer:  1000,
		WriteTimeout: 5 * time.Second,
		ArtifactDir:  "artifacts/evidence",
	}
}

// Recorder writes evidence records to storage asynchronously. Record
// enqueues and returns immediately; a background worker drains the channel
// and Close waits for pending writes to land.
type Recorder struct {
	storage    evidence.Storage
	config     *Config
	recordChan chan *evidence.EvidenceRecord
	wg         sync.WaitGroup
	done       chan struct{}
	logger     *slog.Logger
}

// NewRecorder creates an evidence recorder over the given storage backend
// and starts its background worker.
func NewRecorder(storage evidence.Storage, config *Config) *Recorder {
	if config == nil {
		config = DefaultConfig()
	}

	r := &Recorder{
		storage:    storage,
		config:     config,
		recordChan: make(chan *evidence.EvidenceRecord, config.AsyncBuffer),
		done:       make(chan struct{}),
		logger:     slog.Default().With("component", "evidence.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("evidence recorder initialized",
		"async_buffer", config.AsyncBuffer,
		"write_timeout", config.WriteTimeout,
		"artifact_dir", config.ArtifactDir,
	)

	return r
}

// Record enqueues a completed evidence record for persistence. It returns
// immediately; a full channel or a recorder mid-shutdown drops the record
// with an error, and the caller's in-memory record stays valid either way.
func (r *Recorder) Record(ctx context.Context, record *evidence.EvidenceRecord) error {
	if !r.config.Enabled {
		return nil
	}

	select {
	case r.recordChan <- record:
		r.logger.Debug("evidence record enqueued",
			"request_id", record.RequestID,
		)
		return nil
	case <-time.After(r.config.WriteTimeout):
		r.logger.Error("evidence channel full, dropping record",
			"request_id", record.RequestID,
			"channel_capacity", r.config.AsyncBuffer,
		)
		return evidence.NewRecorderError(record.RequestID, context.DeadlineExceeded)
	case <-r.done:
		r.logger.Warn("recorder shutting down, dropping record",
			"request_id", record.RequestID,
		)
		return evidence.NewRecorderError(record.RequestID, context.Canceled)
	}
}

// Close gracefully shuts down the recorder by draining the async channel
// and waiting for all pending writes to complete.
func (r *Recorder) Close() error {
	r.logger.Info("shutting down evidence recorder")

	close(r.done)
	r.wg.Wait()

	r.logger.Info("evidence recorder shut down complete")
	return nil
}

// worker drains the evidence channel and writes records to storage.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.recordChan:
			r.writeRecord(record)

		case <-r.done:
			r.logger.Info("draining evidence channel before shutdown",
				"pending_count", len(r.recordChan),
			)
			for {
				select {
				case record := <-r.recordChan:
					r.writeRecord(record)
				default:
					r.logger.Info("evidence channel drained")
					return
				}
			}
		}
	}
}

// writeRecord persists one record: the storage row first, then the JSON
// artifact. Failures are logged, never propagated; the in-memory record
// already returned to the caller remains authoritative.
func (r *Recorder) writeRecord(record *evidence.EvidenceRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()

	if err := r.storage.Store(ctx, record); err != nil {
		r.logger.Error("failed to store evidence record",
			"request_id", record.RequestID,
			"error", err,
		)
	}

	if err := r.writeArtifact(record); err != nil {
		r.logger.Error("failed to write evidence artifact",
			"request_id", record.RequestID,
			"error", err,
		)
	}

	r.logger.Info("evidence recorded",
		"request_id", record.RequestID,
		"policy_result", record.Decision.Result,
		"sql_hash", record.SQL.SQLHash,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// writeArtifact writes the standalone JSON artifact for one record.
func (r *Recorder) writeArtifact(record *evidence.EvidenceRecord) error {
	if r.config.ArtifactDir == "" {
		return nil
	}
	if err := os.MkdirAll(r.config.ArtifactDir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(r.config.ArtifactDir, record.RequestID+".json")
	return os.WriteFile(path, data, 0o644)
}
