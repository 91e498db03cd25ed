package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a catalog directory for changes and swaps in a freshly
// loaded catalog. Reloads are debounced to prevent storms while files are
// being written.
type Watcher struct {
	dir      string
	debounce time.Duration
	logger   *slog.Logger

	mu      sync.RWMutex
	current *Catalog
}

// NewWatcher creates a watcher over a catalog directory with an initial
// catalog snapshot already loaded.
func NewWatcher(dir string, initial *Catalog, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}
	return &Watcher{
		dir:      dir,
		debounce: debounce,
		logger:   slog.Default().With("component", "catalog.watcher"),
		current:  initial,
	}
}

// Current returns the latest catalog snapshot. The snapshot is immutable;
// callers hold it for the duration of one request.
func (w *Watcher) Current() *Catalog {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Watch blocks, reloading the catalog whenever a YAML file in the directory
// changes, until the context is cancelled. A reload that fails validation is
// logged and discarded; the previous snapshot stays active.
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch catalog directory %q: %w", w.dir, err)
	}

	w.logger.Info("catalog watcher started",
		"dir", w.dir,
		"debounce_ms", w.debounce.Milliseconds(),
	)

	var timer *time.Timer
	reload := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("catalog watcher stopped")
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !isCatalogFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// Debounce: restart the timer on every relevant event.
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case <-reload:
			w.reload()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("catalog watcher error", "error", err)
		}
	}
}

func (w *Watcher) reload() {
	fresh, err := Load(w.dir)
	if err != nil {
		w.logger.Error("catalog reload failed, keeping previous snapshot",
			"dir", w.dir,
			"error", err,
		)
		return
	}

	w.mu.Lock()
	w.current = fresh
	w.mu.Unlock()

	w.logger.Info("catalog reloaded",
		"metrics", len(fresh.Metrics()),
		"data_products", len(fresh.DataProducts()),
	)
}

func isCatalogFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
