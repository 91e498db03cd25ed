package warehouse

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
)

func testExecutor(t *testing.T) *Executor {
	t.Helper()
	e, err := Open(filepath.Join(t.TempDir(), "warehouse.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { e.Close() })

	seed := []string{
		`CREATE TABLE dp_complaints (state TEXT, product TEXT, region TEXT)`,
		`INSERT INTO dp_complaints VALUES
			('CA', 'mortgage', 'west'),
			('CA', 'card', 'west'),
			('NY', 'mortgage', 'northeast')`,
	}
	for _, stmt := range seed {
		if _, err := e.DB().Exec(stmt); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return e
}

func TestQueryMaterializesRows(t *testing.T) {
	e := testExecutor(t)

	res, err := e.Query(context.Background(), "SELECT state, COUNT(*) AS complaint_count FROM dp_complaints GROUP BY state ORDER BY state")
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if res.RowCount != 2 {
		t.Fatalf("RowCount = %d, want 2", res.RowCount)
	}
	if res.Rows[0]["state"] != "CA" {
		t.Errorf("first row state = %v, want CA", res.Rows[0]["state"])
	}

	counts := res.Column("complaint_count")
	if len(counts) != 2 {
		t.Fatalf("Column() returned %d values", len(counts))
	}
}

func TestQueryError(t *testing.T) {
	e := testExecutor(t)
	if _, err := e.Query(context.Background(), "SELECT * FROM dp_missing"); err == nil {
		t.Error("Query(missing table) = nil error")
	}
}

func TestExportCSV(t *testing.T) {
	e := testExecutor(t)

	res, err := e.Query(context.Background(), "SELECT state, product FROM dp_complaints ORDER BY state, product")
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}

	dir := t.TempDir()
	path, err := ExportCSV(res, dir, "export_test.csv")
	if err != nil {
		t.Fatalf("ExportCSV() error: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("export has %d records, want header + 3 rows", len(records))
	}
	if records[0][0] != "state" || records[0][1] != "product" {
		t.Errorf("header = %v", records[0])
	}
	if records[1][0] != "CA" {
		t.Errorf("first data row = %v", records[1])
	}
}
