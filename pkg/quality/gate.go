package quality

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"
	"time"
)

// validTableRE restricts registry lookups and row-count probes to data
// product table names, preventing interpolation of anything else.
var validTableRE = regexp.MustCompile(`^dp_[a-z_][a-z0-9_]*$`)

// Status is the read-only quality snapshot of one data product, fetched
// fresh per request and never cached across requests.
type Status struct {
	Promoted       bool     `json:"promoted"`
	LastPromoted   string   `json:"last_promoted,omitempty"`
	Freshness      string   `json:"freshness,omitempty"`
	RowCount       int64    `json:"row_count"`
	DbtTestsPassed bool     `json:"dbt_tests_passed"`
	GeChecksPassed bool     `json:"ge_checks_passed"`
	Queryable      bool     `json:"queryable"`
	Issues         []string `json:"issues,omitempty"`
}

// Gate checks promotion status against the registry stored alongside the
// warehouse data.
type Gate struct {
	db     *sql.DB
	logger *slog.Logger

	// allowUnpromoted enables the bootstrap fallback: products without a
	// registry entry count as queryable when their table exists and is
	// non-empty. This weakens the gate and is off unless configured.
	allowUnpromoted bool
}

// NewGate creates a quality gate over the registry database.
func NewGate(db *sql.DB, allowUnpromoted bool) *Gate {
	return &Gate{
		db:              db,
		logger:          slog.Default().With("component", "quality.gate"),
		allowUnpromoted: allowUnpromoted,
	}
}

// CheckQueryable reports whether every requested data product is certified
// queryable, along with the per-product snapshot. A single blocked product
// blocks the whole request.
func (g *Gate) CheckQueryable(ctx context.Context, productIDs []string) (bool, map[string]Status) {
	statuses := make(map[string]Status, len(productIDs))
	allOK := true
	for _, id := range productIDs {
		st := g.productStatus(ctx, id)
		statuses[id] = st
		if !st.Queryable {
			allOK = false
		}
	}
	return allOK, statuses
}

func (g *Gate) productStatus(ctx context.Context, id string) Status {
	var st Status

	if !validTableRE.MatchString(id) {
		st.Issues = append(st.Issues, fmt.Sprintf("invalid data product id %q", id))
		return st
	}

	registered := g.readRegistry(ctx, id, &st)

	if !registered && g.allowUnpromoted {
		if rows, ok := g.rowCount(ctx, id); ok {
			st.RowCount = rows
			if rows > 0 {
				g.logger.Warn("promotion registry has no entry, treating product as queryable",
					"data_product", id,
					"row_count", rows,
				)
				st.Promoted = true
				st.Queryable = true
				st.DbtTestsPassed = true
				st.GeChecksPassed = true
				st.Freshness = time.Now().UTC().Format(time.RFC3339)
			}
		} else {
			st.Issues = append(st.Issues, fmt.Sprintf("table %s does not exist", id))
		}
	} else if registered {
		if rows, ok := g.rowCount(ctx, id); ok {
			st.RowCount = rows
		}
	}

	if !st.Queryable && len(st.Issues) == 0 {
		st.Issues = append(st.Issues, fmt.Sprintf("data product %s is not promoted or quality gates failed", id))
	}
	return st
}

// readRegistry loads the promote_status row for a product. It reports false
// when the row or the registry table itself is absent.
func (g *Gate) readRegistry(ctx context.Context, id string, st *Status) bool {
	var (
		promoted     bool
		lastPromoted sql.NullString
		dbtPassed    bool
		gePassed     bool
	)
	err := g.db.QueryRowContext(ctx,
		"SELECT promoted, last_promoted, dbt_passed, ge_passed FROM promote_status WHERE data_product = ?",
		id,
	).Scan(&promoted, &lastPromoted, &dbtPassed, &gePassed)
	if err != nil {
		// Missing row and missing table are both "not registered".
		return false
	}

	st.Promoted = promoted
	st.LastPromoted = lastPromoted.String
	st.DbtTestsPassed = dbtPassed
	st.GeChecksPassed = gePassed
	st.Queryable = promoted
	return true
}

func (g *Gate) rowCount(ctx context.Context, id string) (int64, bool) {
	var n int64
	// id already matched validTableRE.
	err := g.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", id)).Scan(&n)
	if err != nil {
		return 0, false
	}
	return n, true
}
