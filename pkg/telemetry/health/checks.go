package health

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
)

// DatabaseCheck returns a check that pings a SQL database. It covers
// both the warehouse connection and the evidence store.
func DatabaseCheck(db *sql.DB) CheckFunc {
	return func(ctx context.Context) error {
		if db == nil {
			return fmt.Errorf("database not configured")
		}
		return db.PingContext(ctx)
	}
}

// CatalogCheck returns a check that verifies the metric catalog has
// been loaded.
func CatalogCheck(metricCount func() int) CheckFunc {
	return func(ctx context.Context) error {
		if n := metricCount(); n == 0 {
			return fmt.Errorf("catalog has no metrics loaded")
		}
		return nil
	}
}

// EndpointCheck returns a check that probes an HTTP endpoint, used for
// the remote policy service and the lineage collector. An empty URL
// passes, since both services are optional.
func EndpointCheck(client *http.Client, url string) CheckFunc {
	return func(ctx context.Context) error {
		if url == "" {
			return nil
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		resp.Body.Close()
		if resp.StatusCode >= 500 {
			return fmt.Errorf("endpoint returned %d", resp.StatusCode)
		}
		return nil
	}
}
