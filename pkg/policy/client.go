package policy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"trustmark-hq/polaris/pkg/catalog"
)

// Client evaluates policy against a remote policy service, falling back to
// the local Evaluate rules when the service is unreachable or times out.
// The fallback is behaviorally equivalent for the documented rule set, so a
// service outage degrades availability of remote-only rules, never safety.
type Client struct {
	url    string
	httpc  *http.Client
	logger *slog.Logger
}

// ClientConfig configures the remote policy client.
type ClientConfig struct {
	// URL is the decision endpoint of the remote policy service.
	// Empty disables remote evaluation entirely.
	URL string

	// Timeout bounds each remote call. Default: 5 seconds.
	Timeout time.Duration
}

// NewClient creates a policy client. With an empty URL the client evaluates
// locally only.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		url:    cfg.URL,
		httpc:  &http.Client{Timeout: timeout},
		logger: slog.Default().With("component", "policy.client"),
	}
}

// evalRequest is the wire format sent to the remote policy service.
type evalRequest struct {
	User        UserAttributes      `json:"user"`
	DataProduct string              `json:"data_product"`
	Columns     []catalog.ColumnRef `json:"columns"`
	Action      string              `json:"action"`
	Purpose     Purpose             `json:"purpose"`
	Overrides   *Overrides          `json:"policy_overrides,omitempty"`
}

// Evaluate consults the remote service first, if configured, and falls back
// to the local evaluator on any transport failure or malformed response.
func (c *Client) Evaluate(ctx context.Context, user UserAttributes, dataProduct string, columns []catalog.ColumnRef, overrides *Overrides) Decision {
	if c.url == "" {
		return Evaluate(user, columns, overrides)
	}

	decision, err := c.callRemote(ctx, user, dataProduct, columns, overrides)
	if err != nil {
		c.logger.Warn("remote policy service unavailable, using local fallback",
			"url", c.url,
			"error", err,
		)
		return Evaluate(user, columns, overrides)
	}
	return decision
}

func (c *Client) callRemote(ctx context.Context, user UserAttributes, dataProduct string, columns []catalog.ColumnRef, overrides *Overrides) (Decision, error) {
	payload := evalRequest{
		User:        user,
		DataProduct: dataProduct,
		Columns:     columns,
		Action:      "query",
		Purpose:     user.Purpose,
		Overrides:   overrides,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to encode policy request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Decision{}, fmt.Errorf("failed to build policy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return Decision{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Decision{}, fmt.Errorf("policy service returned status %d", resp.StatusCode)
	}

	var decision Decision
	if err := json.NewDecoder(resp.Body).Decode(&decision); err != nil {
		return Decision{}, fmt.Errorf("failed to decode policy response: %w", err)
	}

	switch decision.Result {
	case ResultAllow, ResultAllowWithConstraints:
		if decision.Constraints == nil {
			decision.Constraints = &Constraints{MinGroupSize: DefaultMinGroupSize}
		}
	case ResultDeny:
		decision.Constraints = nil
	default:
		return Decision{}, fmt.Errorf("policy service returned unknown result %q", decision.Result)
	}

	return decision, nil
}
