// Package daemonclient talks to the introspection server of a running host.
package daemonclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/leefowlercu/compage/internal/config"
	"github.com/leefowlercu/compage/internal/daemon"
	"github.com/leefowlercu/compage/internal/report"
	"github.com/leefowlercu/compage/internal/version"
)

const (
	DefaultTimeout = 5 * time.Second
	KillTimeout    = 30 * time.Second
)

// Client provides a shared HTTP client for host endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithBaseURL points the client at baseURL instead of the configured bind.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// New creates a Client using the http settings.
func New(cfg config.HTTPConfig, opts ...Option) *Client {
	client := &Client{
		baseURL: ResolveBaseURL(cfg),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// NewFromConfig creates a Client from the root config. It fails when the
// introspection server is disabled.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config not initialized")
	}
	if !cfg.HTTP.Enabled {
		return nil, fmt.Errorf("http server is disabled; set http.enabled to reach a running host")
	}
	return New(cfg.HTTP, opts...), nil
}

// ResolveBaseURL builds the host base URL from config.
func ResolveBaseURL(cfg config.HTTPConfig) string {
	bind := NormalizeBind(cfg.Bind)
	return fmt.Sprintf("http://%s:%d", bind, cfg.Port)
}

// NormalizeBind maps wildcard binds to loopback for local clients.
func NormalizeBind(bind string) string {
	if bind == "" || bind == "0.0.0.0" || bind == "::" {
		return "127.0.0.1"
	}
	if strings.Contains(bind, ":") && !strings.HasPrefix(bind, "[") {
		return "[" + bind + "]"
	}
	return bind
}

// Ready fetches /readyz. A host that is not ready still returns its status.
func (c *Client) Ready(ctx context.Context) (*daemon.HealthStatus, error) {
	var status daemon.HealthStatus
	if err := c.doJSON(ctx, http.MethodGet, "/readyz", &status, http.StatusOK, http.StatusServiceUnavailable); err != nil {
		return nil, err
	}
	return &status, nil
}

// Components fetches the resolved component table.
func (c *Client) Components(ctx context.Context) ([]report.ComponentInfo, error) {
	var result []report.ComponentInfo
	if err := c.doJSON(ctx, http.MethodGet, "/components", &result, http.StatusOK); err != nil {
		return nil, err
	}
	return result, nil
}

// Instances fetches every instance in load order.
func (c *Client) Instances(ctx context.Context) ([]report.InstanceInfo, error) {
	var result []report.InstanceInfo
	if err := c.doJSON(ctx, http.MethodGet, "/instances", &result, http.StatusOK); err != nil {
		return nil, err
	}
	return result, nil
}

// Instance fetches the instance with string id sid.
func (c *Client) Instance(ctx context.Context, sid string) (*report.InstanceInfo, error) {
	var result report.InstanceInfo
	if err := c.doJSON(ctx, http.MethodGet, "/instances/"+url.PathEscape(sid), &result, http.StatusOK); err != nil {
		return nil, err
	}
	return &result, nil
}

// Kill cancels and joins the instance with string id sid and returns its
// final view.
func (c *Client) Kill(ctx context.Context, sid string) (*report.InstanceInfo, error) {
	var result report.InstanceInfo
	path := "/instances/" + url.PathEscape(sid) + "/kill"
	if err := c.doJSON(ctx, http.MethodPost, path, &result, http.StatusOK); err != nil {
		return nil, err
	}
	return &result, nil
}

// Shutdown asks the host to cancel and join every instance and exit.
func (c *Client) Shutdown(ctx context.Context) (*daemon.ShutdownResponse, error) {
	var result daemon.ShutdownResponse
	if err := c.doJSON(ctx, http.MethodPost, "/shutdown", &result, http.StatusAccepted); err != nil {
		return nil, err
	}
	return &result, nil
}

// Report fetches the full report rendered by the host in format.
func (c *Client) Report(ctx context.Context, format string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, "/report?format="+url.QueryEscape(format))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, http.StatusOK); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response; %w", err)
	}
	return data, nil
}

func (c *Client) do(ctx context.Context, method, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request; %w", err)
	}
	req.Header.Set("User-Agent", version.Get().UserAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to host; %w", err)
	}
	return resp, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, out any, accept ...int) error {
	resp, err := c.do(ctx, method, path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, accept...); err != nil {
		return err
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response; %w", err)
	}

	return nil
}

func checkStatus(resp *http.Response, accept ...int) error {
	if slices.Contains(accept, resp.StatusCode) {
		return nil
	}

	var errResp errorResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&errResp); decodeErr == nil && errResp.Error != "" {
		return fmt.Errorf("host request failed; %s", errResp.Error)
	}
	return fmt.Errorf("host request failed; status %d", resp.StatusCode)
}

type errorResponse struct {
	Error string `json:"error"`
}
