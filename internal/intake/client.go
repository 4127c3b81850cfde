package intake

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/terrasite/leadform/internal/leads"
)

// Client reads the admin endpoints of a running intake server.
type Client struct {
	http     *resty.Client
	baseURL  string
	adminKey string
}

// NewClient creates a client for the server at baseURL. http is usually
// submit.NewClient so both directions share retry and logging settings.
func NewClient(http *resty.Client, baseURL, adminKey string) *Client {
	return &Client{
		http:     http,
		baseURL:  strings.TrimRight(baseURL, "/"),
		adminKey: adminKey,
	}
}

// Leads fetches every stored lead, oldest first.
func (c *Client) Leads(ctx context.Context) ([]leads.Lead, error) {
	var out []leads.Lead
	var failure SubmitResponse

	req := c.http.R().SetContext(ctx).SetResult(&out).SetError(&failure)
	if c.adminKey != "" {
		req.SetHeader(AdminKeyHeader, c.adminKey)
	}

	resp, err := req.Get(c.baseURL + "/admin/leads")
	if err != nil {
		return nil, fmt.Errorf("fetching leads: %w", err)
	}
	if resp.IsError() {
		if failure.Error != "" {
			return nil, fmt.Errorf("fetching leads: %s (status %d)", failure.Error, resp.StatusCode())
		}
		return nil, fmt.Errorf("fetching leads: status %d", resp.StatusCode())
	}
	return out, nil
}

// Health checks that the server is up.
func (c *Client) Health(ctx context.Context) (HealthResponse, error) {
	var out HealthResponse
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get(c.baseURL + "/health")
	if err != nil {
		return HealthResponse{}, fmt.Errorf("health check: %w", err)
	}
	if resp.IsError() {
		return HealthResponse{}, fmt.Errorf("health check: status %d", resp.StatusCode())
	}
	return out, nil
}
