package perfserver

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/voluzi/perfwatch/pkg/history"
)

var (
	// httpClient is a shared HTTP client with reasonable timeout
	httpClient = &http.Client{
		Timeout: 30 * time.Second,
	}
)

// Client queries a running perfwatch server.
type Client struct {
	url string
}

// NewClient creates a client for the server at host. A port below 1 selects DefaultPort.
func NewClient(host string, port int) *Client {
	if port < 1 {
		port = DefaultPort
	}
	return &Client{url: fmt.Sprintf("http://%s:%d", host, port)}
}

// httpGet performs an HTTP GET request and returns the body of a 200 response.
func (c *Client) httpGet(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return body, nil
}

func (c *Client) httpGetJSON(ctx context.Context, endpoint string, target interface{}) error {
	body, err := c.httpGet(ctx, endpoint)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, target)
}

// GetData returns every sample retained by the server, oldest first.
func (c *Client) GetData(ctx context.Context) ([]history.Sample, error) {
	samples := []history.Sample{}
	if err := c.httpGetJSON(ctx, "/api/data", &samples); err != nil {
		return nil, err
	}
	return samples, nil
}

// GetLatest returns the most recent sample, or nil when the server holds none.
func (c *Client) GetLatest(ctx context.Context) (*history.Sample, error) {
	var fields map[string]json.RawMessage
	body, err := c.httpGet(ctx, "/api/latest")
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}

	var sample history.Sample
	if err := json.Unmarshal(body, &sample); err != nil {
		return nil, err
	}
	return &sample, nil
}

func (c *Client) GetSummary(ctx context.Context) (*history.Summary, error) {
	var summary history.Summary
	if err := c.httpGetJSON(ctx, "/api/summary", &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *Client) GetHealth(ctx context.Context) (*Health, error) {
	var health Health
	if err := c.httpGetJSON(ctx, "/health", &health); err != nil {
		return nil, err
	}
	return &health, nil
}
