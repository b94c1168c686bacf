package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"wifilayer/internal/model"
	"wifilayer/internal/session"
)

// Client is a thin HTTP client for a running wifilayer API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the given base URL (e.g. http://host:port).
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Status fetches the last refresh snapshot without triggering detection.
func (c *Client) Status(ctx context.Context) (session.Status, error) {
	var resp session.Status
	err := c.getJSON(ctx, "/api/status", &resp)
	return resp, err
}

// Refresh asks the server to describe and classify the current network.
func (c *Client) Refresh(ctx context.Context) (session.Status, error) {
	var resp session.Status
	err := c.postJSON(ctx, "/api/refresh", struct{}{}, &resp)
	return resp, err
}

// GenerateTunnel renders a tunnel config on the server.
func (c *Client) GenerateTunnel(ctx context.Context, req model.TunnelRequest) (TunnelResponse, error) {
	var resp TunnelResponse
	err := c.postJSON(ctx, "/api/wireguard", req, &resp)
	return resp, err
}

// SecureNetwork records the hardening recommendations and returns them.
func (c *Client) SecureNetwork(ctx context.Context) (LogsResponse, error) {
	var resp LogsResponse
	err := c.postJSON(ctx, "/api/secure", struct{}{}, &resp)
	return resp, err
}

// Firewall fetches the firewall plan for platform.
func (c *Client) Firewall(ctx context.Context, platform string) (FirewallResponse, error) {
	var resp FirewallResponse
	err := c.postJSON(ctx, "/api/firewall", FirewallRequest{Platform: platform}, &resp)
	return resp, err
}

// Logs fetches notices with an ID greater than since.
func (c *Client) Logs(ctx context.Context, since uint64) (LogsResponse, error) {
	var resp LogsResponse
	endpoint := "/api/logs?since=" + url.QueryEscape(strconv.FormatUint(since, 10))
	err := c.getJSON(ctx, endpoint, &resp)
	return resp, err
}

func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if err := checkStatus(res); err != nil {
		return err
	}

	if out == nil {
		return nil
	}

	decoder := json.NewDecoder(res.Body)
	return decoder.Decode(out)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if err := checkStatus(res); err != nil {
		return err
	}

	decoder := json.NewDecoder(res.Body)
	return decoder.Decode(out)
}

func checkStatus(res *http.Response) error {
	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(res.Body)
	var apiErr ErrorResponse
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
		return fmt.Errorf("request failed: %s: %s", res.Status, apiErr.Error)
	}
	msg := strings.TrimSpace(string(body))
	if msg != "" {
		return fmt.Errorf("request failed: %s: %s", res.Status, msg)
	}
	return fmt.Errorf("request failed: %s", res.Status)
}
