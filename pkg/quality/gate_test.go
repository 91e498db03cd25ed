package quality

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func testDB(t *testing.T, withRegistry bool) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "quality.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(`CREATE TABLE dp_complaints (state TEXT)`); err != nil {
		t.Fatalf("seed table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO dp_complaints VALUES ('CA'), ('NY')`); err != nil {
		t.Fatalf("seed rows: %v", err)
	}

	if withRegistry {
		stmts := []string{
			`CREATE TABLE promote_status (
				data_product TEXT PRIMARY KEY,
				promoted INTEGER,
				last_promoted TEXT,
				dbt_passed INTEGER,
				ge_passed INTEGER
			)`,
			`INSERT INTO promote_status VALUES ('dp_complaints', 1, '2026-08-01T00:00:00Z', 1, 1)`,
			`INSERT INTO promote_status VALUES ('dp_call_reports', 0, NULL, 0, 0)`,
		}
		for _, s := range stmts {
			if _, err := db.Exec(s); err != nil {
				t.Fatalf("seed registry: %v", err)
			}
		}
	}
	return db
}

func TestPromotedProductIsQueryable(t *testing.T) {
	g := NewGate(testDB(t, true), false)

	ok, statuses := g.CheckQueryable(context.Background(), []string{"dp_complaints"})
	if !ok {
		t.Fatal("promoted product reported not queryable")
	}
	st := statuses["dp_complaints"]
	if !st.Promoted || !st.Queryable || !st.DbtTestsPassed {
		t.Errorf("unexpected status: %+v", st)
	}
	if st.LastPromoted == "" {
		t.Error("LastPromoted not populated from registry")
	}
	if st.RowCount != 2 {
		t.Errorf("RowCount = %d, want 2", st.RowCount)
	}
}

func TestUnpromotedProductBlocks(t *testing.T) {
	g := NewGate(testDB(t, true), false)

	ok, statuses := g.CheckQueryable(context.Background(), []string{"dp_call_reports"})
	if ok {
		t.Fatal("unpromoted product reported queryable")
	}
	st := statuses["dp_call_reports"]
	if st.Queryable {
		t.Errorf("Queryable = true for unpromoted product: %+v", st)
	}
	if len(st.Issues) == 0 {
		t.Error("blocked product must carry an issue message")
	}
}

func TestOneBlockedProductBlocksAll(t *testing.T) {
	g := NewGate(testDB(t, true), false)

	ok, _ := g.CheckQueryable(context.Background(), []string{"dp_complaints", "dp_call_reports"})
	if ok {
		t.Error("mixed promotion state must block the whole request")
	}
}

func TestMissingRegistryStrictMode(t *testing.T) {
	g := NewGate(testDB(t, false), false)

	ok, statuses := g.CheckQueryable(context.Background(), []string{"dp_complaints"})
	if ok {
		t.Fatal("strict mode must block products without a registry entry")
	}
	if statuses["dp_complaints"].Queryable {
		t.Error("strict mode marked unregistered product queryable")
	}
}

func TestMissingRegistryOptimisticFallback(t *testing.T) {
	g := NewGate(testDB(t, false), true)

	ok, statuses := g.CheckQueryable(context.Background(), []string{"dp_complaints"})
	if !ok {
		t.Fatal("optimistic fallback must pass a populated, unregistered table")
	}
	st := statuses["dp_complaints"]
	if !st.Queryable || st.RowCount != 2 {
		t.Errorf("unexpected fallback status: %+v", st)
	}
}

func TestMissingTableNotQueryableEvenOptimistic(t *testing.T) {
	g := NewGate(testDB(t, false), true)

	ok, statuses := g.CheckQueryable(context.Background(), []string{"dp_nonexistent"})
	if ok {
		t.Fatal("missing table must never be queryable")
	}
	st := statuses["dp_nonexistent"]
	if len(st.Issues) == 0 {
		t.Error("missing table must be reported with an issue")
	}
}

func TestInvalidProductIDRejected(t *testing.T) {
	g := NewGate(testDB(t, true), true)

	ok, statuses := g.CheckQueryable(context.Background(), []string{"promote_status; DROP TABLE x"})
	if ok {
		t.Fatal("invalid product id must block")
	}
	st := statuses["promote_status; DROP TABLE x"]
	if st.Queryable || len(st.Issues) == 0 {
		t.Errorf("unexpected status for invalid id: %+v", st)
	}
}
