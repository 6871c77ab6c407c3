package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/willcgage/wirelessboard/internal/dcid"
	"github.com/willcgage/wirelessboard/internal/registry"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 10 * time.Second
)

// Overview mirrors the dashboard's /data.json payload.
type Overview struct {
	Discovered []registry.Device `json:"discovered"`
	DCIDStatus dcid.Status       `json:"dcid_status"`
	URL        string            `json:"url"`
}

// Client talks to a running wirelessboard dashboard server.
type Client struct {
	// BaseURL is the dashboard root (e.g. "http://192.168.1.20:8058").
	BaseURL string

	// HTTPClient is the underlying HTTP client.
	HTTPClient *http.Client
}

// New creates a client for the given server address. addr may be a bare
// "host:port" pair or a full http:// URL; trailing slashes are stripped.
func New(addr string) *Client {
	base := addr
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}

	return &Client{
		BaseURL:    strings.TrimRight(base, "/"),
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// Ping checks that the server is reachable and answering API requests.
func (c *Client) Ping(ctx context.Context) error {
	var status dcid.Status
	return c.getJSON(ctx, "/api/discovery/status", &status)
}

// Snapshot fetches the current receiver list.
func (c *Client) Snapshot(ctx context.Context) ([]registry.Device, error) {
	var devices []registry.Device
	if err := c.getJSON(ctx, "/api/discovery", &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// Overview fetches the combined dashboard payload: receiver list, device
// class database status and the server's advertised URL.
func (c *Client) Overview(ctx context.Context) (*Overview, error) {
	var overview Overview
	if err := c.getJSON(ctx, "/data.json", &overview); err != nil {
		return nil, err
	}
	return &overview, nil
}

// getJSON performs a GET request and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %w", path, err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s returned status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}

	return nil
}
