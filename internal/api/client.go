// Package api is a thin typed client for the proxy daemon's external
// controller REST API. Every call is independent and stateless; retry
// and scheduling policy live with the callers.
package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultTimeout bounds any single control-plane request.
const DefaultTimeout = 10 * time.Second

// Client talks to the daemon's external controller.
type Client struct {
	baseURL string
	secret  string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (used by tests and
// by callers that need custom transports).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient creates a client for the given base URL (e.g. http://127.0.0.1:9090).
// secret may be empty when the daemon runs without authentication.
func NewClient(baseURL, secret string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		secret:  secret,
		http: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the controller URL the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

// Ping verifies the daemon is reachable and the secret is accepted.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Config(ctx)
	return err
}

// Config fetches the daemon configuration.
func (c *Client) Config(ctx context.Context) (ConfigResponse, error) {
	var resp ConfigResponse
	err := c.do(ctx, http.MethodGet, "/configs", nil, &resp)
	return resp, err
}

// SetMode switches the daemon routing mode (rule/global/direct).
func (c *Client) SetMode(ctx context.Context, mode ProxyMode) error {
	body := map[string]string{"mode": string(mode)}
	return c.do(ctx, http.MethodPatch, "/configs", body, nil)
}

// Proxies fetches the full proxy table (groups and nodes).
func (c *Client) Proxies(ctx context.Context) (ProxiesResponse, error) {
	var resp ProxiesResponse
	err := c.do(ctx, http.MethodGet, "/proxies", nil, &resp)
	return resp, err
}

// SwitchNode sets the selected node of a group.
func (c *Client) SwitchNode(ctx context.Context, group, node string) error {
	body := map[string]string{"name": node}
	return c.do(ctx, http.MethodPut, "/proxies/"+url.PathEscape(group), body, nil)
}

// ProbeLatency measures a node's delay through the daemon, using testURL
// as the target. The timeout is enforced both daemon-side (query param)
// and client-side (context deadline with slack for the round trip).
func (c *Client) ProbeLatency(ctx context.Context, node, testURL string, timeout time.Duration) (int, error) {
	ms := int(timeout / time.Millisecond)
	path := "/proxies/" + url.PathEscape(node) + "/delay?url=" + url.QueryEscape(testURL) +
		"&timeout=" + strconv.Itoa(ms)

	ctx, cancel := context.WithTimeout(ctx, timeout+2*time.Second)
	defer cancel()

	var resp DelayResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Delay, nil
}

// Rules fetches the daemon's routing rules.
func (c *Client) Rules(ctx context.Context) ([]Rule, error) {
	var resp RulesResponse
	if err := c.do(ctx, http.MethodGet, "/rules", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Rules, nil
}

// Providers fetches the proxy providers.
func (c *Client) Providers(ctx context.Context) (map[string]Provider, error) {
	var resp ProvidersResponse
	if err := c.do(ctx, http.MethodGet, "/providers/proxies", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Providers, nil
}

// UpdateProvider asks the daemon to refresh one provider's subscription.
func (c *Client) UpdateProvider(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodPut, "/providers/proxies/"+url.PathEscape(name), nil, nil)
}

// Connections fetches the live connection table and traffic totals.
func (c *Client) Connections(ctx context.Context) (ConnectionsResponse, error) {
	var resp ConnectionsResponse
	err := c.do(ctx, http.MethodGet, "/connections", nil, &resp)
	return resp, err
}

// CloseConnection terminates one connection by id.
func (c *Client) CloseConnection(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/connections/"+url.PathEscape(id), nil, nil)
}

// CloseAllConnections terminates every tracked connection.
func (c *Client) CloseAllConnections(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/connections", nil, nil)
}

// StreamLogs opens the daemon's streaming log endpoint and forwards
// decoded entries to out until ctx is canceled or the stream ends.
// The channel is closed when the stream terminates; the returned error
// reflects why (nil on clean EOF or cancellation).
func (c *Client) StreamLogs(ctx context.Context, level string, out chan<- LogEntry) error {
	defer close(out)

	path := "/logs"
	if level != "" {
		path += "?level=" + url.QueryEscape(level)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	c.authorize(req)

	// The log stream is long-lived; bypass the client-wide timeout.
	streaming := &http.Client{Transport: c.http.Transport}
	res, err := streaming.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return classifyTransport(err)
	}
	defer res.Body.Close()

	if err := statusError(res); err != nil {
		return err
	}

	scanner := bufio.NewScanner(res.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var entry LogEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			// Tolerate odd lines; the stream itself is best-effort.
			entry = LogEntry{Type: "info", Payload: string(line)}
		}
		select {
		case out <- entry:
		case <-ctx.Done():
			return nil
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return classifyTransport(err)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.secret != "" {
		req.Header.Set("Authorization", "Bearer "+c.secret)
	}
}

// do performs one JSON request/response cycle against the daemon.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	res, err := c.http.Do(req)
	if err != nil {
		return classifyTransport(err)
	}
	defer res.Body.Close()

	if err := statusError(res); err != nil {
		return err
	}

	if out == nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return &TransportError{Kind: KindMalformed, Err: err}
	}
	return nil
}

// statusError maps non-2xx responses onto the error taxonomy.
func statusError(res *http.Response) error {
	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return nil
	}
	switch res.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusGatewayTimeout, http.StatusRequestTimeout:
		return &TransportError{Kind: KindTimeout, Err: fmt.Errorf("daemon: %s", res.Status)}
	}
	raw, _ := io.ReadAll(io.LimitReader(res.Body, 512))
	msg := string(bytes.TrimSpace(raw))
	if msg == "" {
		msg = res.Status
	}
	return fmt.Errorf("api: request failed: %s", msg)
}

// classifyTransport buckets low-level errors into the taxonomy the UI
// surfaces (refused / timeout / malformed).
func classifyTransport(err error) error {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return &TransportError{Kind: KindTimeout, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TransportError{Kind: KindTimeout, Err: err}
	}
	var operr *net.OpError
	if errors.As(err, &operr) {
		return &TransportError{Kind: KindConnectionRefused, Err: err}
	}
	var uerr *url.Error
	if errors.As(err, &uerr) {
		if uerr.Timeout() {
			return &TransportError{Kind: KindTimeout, Err: err}
		}
		return &TransportError{Kind: KindConnectionRefused, Err: err}
	}
	return err
}
