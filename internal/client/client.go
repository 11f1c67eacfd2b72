// ABOUTME: HTTP client for the Spark sizing API
// ABOUTME: Wraps API calls with error handling for remote-mode CLI usage

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/markalston/spark-sizing-advisor/models"
)

const apiPrefix = "/api/v1"

// Client is the API client for the sizing service
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client with the given base URL
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is a non-2xx response from the backend. A 400 matches
// models.ErrInvalidInput so callers can map it the same way as a local error.
type APIError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("backend error: %s: %s", e.Message, e.Details)
	}
	return fmt.Sprintf("backend error: %s", e.Message)
}

// Is reports whether target is models.ErrInvalidInput for a 400 response.
func (e *APIError) Is(target error) bool {
	return target == models.ErrInvalidInput && e.StatusCode == http.StatusBadRequest
}

// Health calls GET /api/v1/health
func (c *Client) Health(ctx context.Context) (*models.HealthResponse, error) {
	var health models.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// Constants calls GET /api/v1/constants
func (c *Client) Constants(ctx context.Context) (models.ClusterConstants, error) {
	var constants models.ClusterConstants
	err := c.do(ctx, http.MethodGet, "/constants", nil, &constants)
	return constants, err
}

// Recommend calls POST /api/v1/recommend
func (c *Client) Recommend(ctx context.Context, node models.NodeShape) (*models.NodeRecommendation, error) {
	var result models.NodeRecommendation
	if err := c.do(ctx, http.MethodPost, "/recommend", node, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RecommendBatch calls POST /api/v1/recommend/batch
func (c *Client) RecommendBatch(ctx context.Context, nodes []models.NodeShape) ([]models.NodeRecommendation, error) {
	var resp models.BatchRecommendResponse
	if err := c.do(ctx, http.MethodPost, "/recommend/batch", models.BatchRecommendRequest{Nodes: nodes}, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Bootstrap calls POST /api/v1/bootstrap/{provider}
func (c *Client) Bootstrap(ctx context.Context, provider string, req models.BootstrapRequest) (*models.BootstrapResponse, error) {
	var resp models.BootstrapResponse
	if err := c.do(ctx, http.MethodPost, "/bootstrap/"+url.PathEscape(provider), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Inspect calls POST /api/v1/inspect/{provider} for dataproc or emr
func (c *Client) Inspect(ctx context.Context, provider string, req models.InspectRequest) (*models.ClusterInspection, error) {
	var inspection models.ClusterInspection
	if err := c.do(ctx, http.MethodPost, "/inspect/"+url.PathEscape(provider), req, &inspection); err != nil {
		return nil, err
	}
	return &inspection, nil
}

// VSphereInfrastructure calls GET /api/v1/infrastructure/vsphere. With refresh
// the backend skips its cache and rediscovers.
func (c *Client) VSphereInfrastructure(ctx context.Context, refresh bool) (*models.InfrastructureResponse, error) {
	path := "/infrastructure/vsphere"
	if refresh {
		path += "?refresh=true"
	}
	var infra models.InfrastructureResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &infra); err != nil {
		return nil, err
	}
	return &infra, nil
}

// do sends body as JSON (when non-nil) and decodes a 200 response into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.handleErrorResponse(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid response from backend: %w", err)
	}
	return nil
}

// handleRequestError converts context errors to user-friendly messages
func (c *Client) handleRequestError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("request canceled")
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("request timed out")
	}
	return fmt.Errorf("cannot connect to backend at %s: %w", c.baseURL, err)
}

// handleErrorResponse parses API error responses
func (c *Client) handleErrorResponse(resp *http.Response) error {
	var errResp models.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil || errResp.Error == "" {
		return &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("status %d", resp.StatusCode)}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error, Details: errResp.Details}
}
