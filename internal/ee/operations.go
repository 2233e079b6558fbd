package ee

import (
	"context"
	"fmt"
	"time"
)

// Task states reported by the long-running operations surface.
const (
	StatePending   = "PENDING"
	StateRunning   = "RUNNING"
	StateCancelled = "CANCELLED"
	StateSucceeded = "SUCCEEDED"
	StateFailed    = "FAILED"
)

// Operation is a server-side export task. Name is the handle used to poll
// or cancel it.
type Operation struct {
	Name     string             `json:"name"`
	Metadata *OperationMetadata `json:"metadata,omitempty"`
	Done     bool               `json:"done,omitempty"`
	Error    *OperationError    `json:"error,omitempty"`
}

type OperationMetadata struct {
	State           string    `json:"state,omitempty"`
	Description     string    `json:"description,omitempty"`
	Progress        float64   `json:"progress,omitempty"`
	CreateTime      time.Time `json:"createTime,omitempty"`
	UpdateTime      time.Time `json:"updateTime,omitempty"`
	DestinationUris []string  `json:"destinationUris,omitempty"`
}

type OperationError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// State reports the task state, tolerating partially populated responses.
func (o *Operation) State() string {
	if o.Metadata == nil || o.Metadata.State == "" {
		if o.Done {
			return StateSucceeded
		}
		return StatePending
	}
	return o.Metadata.State
}

// Finished reports whether the task reached a terminal state.
func (o *Operation) Finished() bool {
	switch o.State() {
	case StateSucceeded, StateFailed, StateCancelled:
		return true
	}
	return o.Done
}

// GetOperation fetches the current snapshot of a task. The name must be the
// full resource path, projects/{project}/operations/{id}.
func (c *Client) GetOperation(ctx context.Context, name string) (*Operation, error) {
	var op Operation
	if err := c.getJSON(ctx, "/"+name, &op); err != nil {
		return nil, fmt.Errorf("failed to get operation %s: %w", name, err)
	}
	return &op, nil
}

// ListOperations returns every task visible to the project, newest first as
// returned by the server. Pagination is followed until exhausted.
func (c *Client) ListOperations(ctx context.Context) ([]*Operation, error) {
	var all []*Operation
	pageToken := ""
	for {
		path := fmt.Sprintf("/projects/%s/operations", c.project)
		if pageToken != "" {
			path += "?pageToken=" + pageToken
		}
		var page struct {
			Operations    []*Operation `json:"operations"`
			NextPageToken string       `json:"nextPageToken"`
		}
		if err := c.getJSON(ctx, path, &page); err != nil {
			return nil, fmt.Errorf("failed to list operations: %w", err)
		}
		all = append(all, page.Operations...)
		if page.NextPageToken == "" {
			return all, nil
		}
		pageToken = page.NextPageToken
	}
}

// CancelOperation asks the server to stop a running task.
func (c *Client) CancelOperation(ctx context.Context, name string) error {
	if err := c.postJSON(ctx, "/"+name+":cancel", map[string]interface{}{}, nil); err != nil {
		return fmt.Errorf("failed to cancel operation %s: %w", name, err)
	}
	return nil
}

// WaitOperation polls a task until it finishes or the context expires.
func (c *Client) WaitOperation(ctx context.Context, name string, interval time.Duration) (*Operation, error) {
	for {
		op, err := c.GetOperation(ctx, name)
		if err != nil {
			return nil, err
		}
		if op.Finished() {
			return op, nil
		}
		select {
		case <-ctx.Done():
			return op, ctx.Err()
		case <-time.After(interval):
		}
	}
}
