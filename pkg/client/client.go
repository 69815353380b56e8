// Package client is a thin convenience wrapper for CLI tools to call the
// bip353 daemon’s JSON API over a Unix‑domain socket. It re‑exports the
// DTOs from pkg/api so callers get strongly‑typed results instead of
// generic maps.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"

	"github.com/lc/bip353/pkg/api"
)

// Client holds an http.Client wired to a Unix socket.
type Client struct {
	hc   *http.Client
	base string // dummy scheme+host for Request.URL (http://unix)
}

// New returns a Client that dials the given Unix‑domain socket path.
func New(socketPath string) *Client {
	dial := func(ctx context.Context, _, _ string) (net.Conn, error) {
		return (&net.Dialer{}).DialContext(ctx, "unix", socketPath)
	}
	tr := &http.Transport{DialContext: dial}
	return &Client{hc: &http.Client{Transport: tr}, base: "http://unix"}
}

// --------------------------- commands ------------------------------

// Resolve asks the daemon to resolve a human-readable Bitcoin address.
func (c *Client) Resolve(ctx context.Context, address string) (api.ResolveResponse, error) {
	var out api.ResolveResponse
	err := c.post(ctx, "/v1/resolve", api.ResolveRequest{Address: address}, &out)
	return out, err
}

// Parse asks the daemon to split an address into its user and domain parts.
func (c *Client) Parse(ctx context.Context, address string) (api.ParseResponse, error) {
	var out api.ParseResponse
	err := c.post(ctx, "/v1/parse", api.ParseRequest{Address: address}, &out)
	return out, err
}

// Status retrieves the current status of the daemon.
func (c *Client) Status(ctx context.Context) (api.StatusResponse, error) {
	var out api.StatusResponse
	err := c.get(ctx, "/v1/status", &out)
	return out, err
}

// --------------------------- HTTP helpers --------------------------

func (c *Client) post(ctx context.Context, path string, payload, v any) error {
	buf, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.base+path, bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return daemonError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func (c *Client) get(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.base+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return daemonError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// daemonError turns a non-2xx reply into an error, preferring the JSON
// error body over the bare status line.
func daemonError(resp *http.Response) error {
	var er api.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err == nil && er.Error != "" {
		return fmt.Errorf("daemon: %s", er.Error)
	}
	return fmt.Errorf("daemon returned %s", resp.Status)
}
