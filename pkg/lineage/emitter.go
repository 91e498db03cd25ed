package lineage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Unavailable is the sentinel event reference recorded when no lineage
// event could be produced at all.
const Unavailable = "lineage_unavailable"

const namespace = "banking_analytics"

// Event is one OpenLineage-style run event.
type Event struct {
	EventType string         `json:"eventType"`
	EventTime string         `json:"eventTime"`
	Run       Run            `json:"run"`
	Job       Job            `json:"job"`
	Inputs    []Dataset      `json:"inputs"`
	Outputs   []Dataset      `json:"outputs"`
	Producer  string         `json:"producer"`
	Metadata  map[string]any `json:"metadata"`
}

// Run identifies one execution of a job.
type Run struct {
	RunID string `json:"runId"`
}

// Job names the logical job within its namespace.
type Job struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
}

// Dataset names one input or output dataset.
type Dataset struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
}

// Emitter records lineage events locally and, when configured, posts them
// to a remote collector.
type Emitter struct {
	dir    string
	url    string
	httpc  *http.Client
	logger *slog.Logger
}

// Config configures the lineage emitter.
type Config struct {
	// Dir is the local artifact directory for lineage events.
	Dir string

	// URL is the remote collector's lineage endpoint. Empty disables the
	// remote path.
	URL string

	// Timeout bounds each remote post. Default: 5 seconds.
	Timeout time.Duration
}

// NewEmitter creates a lineage emitter.
func NewEmitter(cfg Config) *Emitter {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Emitter{
		dir:    cfg.Dir,
		url:    cfg.URL,
		httpc:  &http.Client{Timeout: timeout},
		logger: slog.Default().With("component", "lineage"),
	}
}

// Record emits one COMPLETE event for an executed query and returns the
// event id. On total failure it logs and returns Unavailable; the caller
// records the sentinel and proceeds.
func (e *Emitter) Record(ctx context.Context, jobName string, inputs, outputs []string, sqlText, user, requestID string) string {
	event := Event{
		EventType: "COMPLETE",
		EventTime: time.Now().UTC().Format(time.RFC3339),
		Run:       Run{RunID: uuid.NewString()},
		Job:       Job{Namespace: namespace, Name: jobName},
		Inputs:    datasets(inputs),
		Outputs:   datasets(outputs),
		Producer:  "polaris",
		Metadata: map[string]any{
			"sql":        sqlText,
			"user":       user,
			"request_id": requestID,
		},
	}

	localOK := e.saveLocal(event)
	remoteOK := e.sendRemote(ctx, event)

	if !localOK && !remoteOK {
		return Unavailable
	}
	return event.Run.RunID
}

func (e *Emitter) saveLocal(event Event) bool {
	if e.dir == "" {
		return false
	}
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		e.logger.Warn("failed to create lineage directory", "dir", e.dir, "error", err)
		return false
	}
	data, err := json.MarshalIndent(event, "", "  ")
	if err != nil {
		e.logger.Warn("failed to encode lineage event", "error", err)
		return false
	}
	path := filepath.Join(e.dir, event.Run.RunID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		e.logger.Warn("failed to write lineage event", "path", path, "error", err)
		return false
	}
	return true
}

func (e *Emitter) sendRemote(ctx context.Context, event Event) bool {
	if e.url == "" {
		return false
	}
	data, err := json.Marshal(event)
	if err != nil {
		e.logger.Warn("failed to encode lineage event", "error", err)
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(data))
	if err != nil {
		e.logger.Warn("failed to build lineage request", "error", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpc.Do(req)
	if err != nil {
		e.logger.Warn("lineage collector unreachable", "url", e.url, "error", err)
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		e.logger.Warn("lineage collector rejected event",
			"url", e.url,
			"status", fmt.Sprint(resp.StatusCode),
		)
		return false
	}
	return true
}

func datasets(names []string) []Dataset {
	ds := make([]Dataset, 0, len(names))
	for _, n := range names {
		ds = append(ds, Dataset{Namespace: namespace, Name: n})
	}
	return ds
}
