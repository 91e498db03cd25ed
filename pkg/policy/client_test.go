package policy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientLocalOnlyWithoutURL(t *testing.T) {
	c := NewClient(ClientConfig{})
	d := c.Evaluate(context.Background(), UserAttributes{Role: "data_analyst", Region: "west", Purpose: PurposeAnalysis}, "dp_complaints", lowCols(), nil)
	if d.Result != ResultAllow {
		t.Fatalf("result = %s, want ALLOW", d.Result)
	}
}

func TestClientUsesRemoteDecision(t *testing.T) {
	var gotAction string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		gotAction, _ = req["action"].(string)
		json.NewEncoder(w).Encode(Decision{
			Result: ResultDeny,
			Reason: "remote denied",
		})
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{URL: srv.URL})
	d := c.Evaluate(context.Background(), UserAttributes{Role: "data_analyst", Region: "west", Purpose: PurposeAnalysis}, "dp_complaints", lowCols(), nil)
	if !d.Denied() {
		t.Fatalf("expected remote DENY, got %s", d.Result)
	}
	if d.Reason != "remote denied" {
		t.Errorf("reason = %q", d.Reason)
	}
	if gotAction != "query" {
		t.Errorf("action = %q, want query", gotAction)
	}
}

func TestClientFallsBackOnTransportFailure(t *testing.T) {
	// Server is closed before the call, so the request fails at dial time
	// and the client must fall back to the local evaluator.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(ClientConfig{URL: url, Timeout: 500 * time.Millisecond})
	d := c.Evaluate(context.Background(), UserAttributes{Role: "branch_manager", Region: RegionAll, Purpose: PurposeAnalysis}, "dp_complaints", lowCols(), nil)
	if !d.Denied() {
		t.Fatalf("local fallback should deny branch_manager with region all, got %s", d.Result)
	}
}

func TestClientFallsBackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{URL: srv.URL})
	d := c.Evaluate(context.Background(), UserAttributes{Role: "compliance_officer", Region: "west", Purpose: PurposeAnalysis}, "dp_complaints", highCols(), nil)
	if d.Result != ResultAllowWithConstraints {
		t.Fatalf("local fallback result = %s, want ALLOW_WITH_CONSTRAINTS", d.Result)
	}
	if d.Constraints == nil || d.Constraints.MaxRows != 100 {
		t.Errorf("unexpected fallback constraints: %+v", d.Constraints)
	}
}

func TestClientNormalizesRemoteConstraints(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Remote ALLOW without constraints: the client must attach the
		// anonymity floor rather than return a nil constraint set.
		json.NewEncoder(w).Encode(map[string]any{"result": "ALLOW", "reason": "remote allowed"})
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{URL: srv.URL})
	d := c.Evaluate(context.Background(), UserAttributes{Role: "data_analyst", Region: "west", Purpose: PurposeAnalysis}, "dp_complaints", lowCols(), nil)
	if d.Result != ResultAllow {
		t.Fatalf("result = %s, want ALLOW", d.Result)
	}
	if d.Constraints == nil || d.Constraints.MinGroupSize != DefaultMinGroupSize {
		t.Errorf("expected normalized constraints, got %+v", d.Constraints)
	}
}
