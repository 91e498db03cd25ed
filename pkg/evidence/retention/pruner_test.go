package retention

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"trustmark-hq/polaris/pkg/evidence"
	"trustmark-hq/polaris/pkg/evidence/storage"
	"trustmark-hq/polaris/pkg/policy"
)

func seedRecords(t *testing.T, s evidence.Storage, ages ...time.Duration) {
	t.Helper()
	base := time.Now().UTC()
	for i, age := range ages {
		rec := &evidence.EvidenceRecord{
			RequestID: "req-" + string(rune('a'+i)),
			Timestamp: base.Add(-age),
			User:      policy.UserAttributes{Role: "auditor"},
			Decision:  evidence.DecisionRecord{Result: string(policy.ResultAllow)},
			SQL:       evidence.SQLRecord{SQLHash: "h"},
		}
		if err := s.Store(context.Background(), rec); err != nil {
			t.Fatalf("seed Store() error: %v", err)
		}
	}
}

func TestPruneByAge(t *testing.T) {
	s := storage.NewMemoryStorage()
	defer s.Close()
	seedRecords(t, s, 400*24*time.Hour, 100*24*time.Hour, time.Hour)

	p := NewPruner(s, &Config{RetentionDays: 365, ArchiveBeforeDelete: false})
	deleted, err := p.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() error: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Prune() deleted %d, want 1", deleted)
	}

	remaining, _ := s.Count(context.Background(), &evidence.Query{})
	if remaining != 2 {
		t.Errorf("remaining = %d, want 2", remaining)
	}
}

func TestPruneByCountKeepsNewest(t *testing.T) {
	s := storage.NewMemoryStorage()
	defer s.Close()
	seedRecords(t, s, 5*time.Hour, 4*time.Hour, 3*time.Hour, 2*time.Hour, time.Hour)

	p := NewPruner(s, &Config{MaxRecords: 2, ArchiveBeforeDelete: false})
	deleted, err := p.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() error: %v", err)
	}
	if deleted != 3 {
		t.Errorf("Prune() deleted %d, want 3", deleted)
	}

	got, err := s.Query(context.Background(), &evidence.Query{})
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("remaining = %d, want 2", len(got))
	}
	// The newest records (smallest ages) must survive.
	for _, r := range got {
		if time.Since(r.Timestamp) > 150*time.Minute {
			t.Errorf("old record %s survived count pruning", r.RequestID)
		}
	}
}

func TestPruneArchivesBeforeDelete(t *testing.T) {
	s := storage.NewMemoryStorage()
	defer s.Close()
	seedRecords(t, s, 400*24*time.Hour, time.Hour)

	dir := t.TempDir()
	p := NewPruner(s, &Config{
		RetentionDays:       365,
		ArchiveBeforeDelete: true,
		ArchivePath:         dir,
	})
	if _, err := p.Prune(context.Background()); err != nil {
		t.Fatalf("Prune() error: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("archive files = %d, want 1", len(entries))
	}
	if !strings.HasPrefix(entries[0].Name(), "evidence-") || !strings.HasSuffix(entries[0].Name(), ".json") {
		t.Errorf("archive file name = %q", entries[0].Name())
	}

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if !strings.Contains(string(data), "req-a") {
		t.Error("archive does not contain the pruned record")
	}
}

func TestPruneNothingToDo(t *testing.T) {
	s := storage.NewMemoryStorage()
	defer s.Close()
	seedRecords(t, s, time.Hour)

	p := NewPruner(s, &Config{RetentionDays: 365, MaxRecords: 10, ArchiveBeforeDelete: false})
	deleted, err := p.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() error: %v", err)
	}
	if deleted != 0 {
		t.Errorf("Prune() deleted %d, want 0", deleted)
	}
}
