package ee

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/croplapse/croplapse-export-poc/internal/logger"
	"github.com/croplapse/croplapse-export-poc/internal/properties"
	"golang.org/x/oauth2/google"
)

const defaultBaseURL = "https://earthengine.googleapis.com/v1"

// Scopes required for expression evaluation and Drive exports.
var oauthScopes = []string{
	"https://www.googleapis.com/auth/earthengine",
	"https://www.googleapis.com/auth/drive",
}

// Client talks to the platform's v1 REST surface. It only ships expression
// graphs and task parameters; every pixel is computed remotely.
type Client struct {
	httpClient *http.Client
	baseURL    string
	project    string
	retries    int
	retryWait  time.Duration
}

// NewClient authenticates with the service-account key from the
// environment (EE_SERVICE_ACCOUNT_FILE) against EE_PROJECT.
func NewClient(ctx context.Context) (*Client, error) {
	project := properties.EarthEngineProject()
	if project == "" {
		return nil, fmt.Errorf("missing required environment variable: EE_PROJECT")
	}

	credsFile := properties.EarthEngineCredentialsFile()
	if credsFile == "" {
		return nil, fmt.Errorf("missing required environment variable: EE_SERVICE_ACCOUNT_FILE")
	}
	keyJSON, err := os.ReadFile(credsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read service account key: %w", err)
	}
	conf, err := google.JWTConfigFromJSON(keyJSON, oauthScopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account key: %w", err)
	}

	baseURL := properties.EarthEngineEndpoint()
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		httpClient: conf.Client(ctx),
		baseURL:    strings.TrimRight(baseURL, "/"),
		project:    project,
		retries:    10,
		retryWait:  5 * time.Second,
	}, nil
}

// NewClientWithHTTPClient wires an explicit transport and endpoint. Tests
// use it with httptest servers.
func NewClientWithHTTPClient(project, baseURL string, hc *http.Client) *Client {
	return &Client{
		httpClient: hc,
		baseURL:    strings.TrimRight(baseURL, "/"),
		project:    project,
		retries:    3,
		retryWait:  10 * time.Millisecond,
	}
}

// Project returns the cloud project the client submits work to.
func (c *Client) Project() string {
	return c.project
}

// postJSON sends payload and decodes the JSON response into out. Transient
// failures are retried with a fixed wait; authorization failures abort
// immediately since retrying cannot fix credentials.
func (c *Client) postJSON(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := c.doRequest(ctx, http.MethodPost, path, payload)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	var reqBody []byte
	if payload != nil {
		var err error
		reqBody, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request payload: %w", err)
		}
	}

	url := c.baseURL + path
	var lastErr error
	for attempt := 1; attempt <= c.retries; attempt++ {
		var reader io.Reader
		if reqBody != nil {
			reader = bytes.NewReader(reqBody)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
		if reqBody != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			logger.Log.Debugf("attempt %d failed: %v", attempt, err)
			if err := c.sleep(ctx); err != nil {
				return nil, err
			}
			continue
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("failed to read response body: %w", readErr)
			if err := c.sleep(ctx); err != nil {
				return nil, err
			}
			continue
		}

		if resp.StatusCode == http.StatusOK {
			return respBody, nil
		}

		apiErr := decodeAPIError(resp.StatusCode, respBody)
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return nil, fmt.Errorf("unauthorized access, check the service account credentials: %w", apiErr)
		}
		lastErr = apiErr
		logger.Log.Debugf("attempt %d failed: %v", attempt, apiErr)
		if err := c.sleep(ctx); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("request to %s failed after %d attempts: %w", path, c.retries, lastErr)
}

func (c *Client) sleep(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.retryWait):
		return nil
	}
}
