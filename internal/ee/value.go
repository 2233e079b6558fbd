package ee

import (
	"context"
	"encoding/json"
	"fmt"
)

// ComputeValue evaluates a scalar expression server-side and returns the raw
// JSON result. Callers decode it into whatever shape the expression yields.
func (c *Client) ComputeValue(ctx context.Context, e Expression) (json.RawMessage, error) {
	payload := map[string]interface{}{
		"expression": e,
	}
	var result struct {
		Result json.RawMessage `json:"result"`
	}
	path := fmt.Sprintf("/projects/%s/value:compute", c.project)
	if err := c.postJSON(ctx, path, payload, &result); err != nil {
		return nil, fmt.Errorf("failed to compute value: %w", err)
	}
	return result.Result, nil
}

// ComputeNumber evaluates a numeric expression server-side.
func (c *Client) ComputeNumber(ctx context.Context, n Number) (float64, error) {
	raw, err := c.ComputeValue(ctx, NewExpression(n))
	if err != nil {
		return 0, err
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("expression did not evaluate to a number: %w", err)
	}
	return v, nil
}
