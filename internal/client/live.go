package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/zhouzirui/physical-ai-tutor/backend/internal/model/chat"
	"github.com/zhouzirui/physical-ai-tutor/backend/internal/model/content"
)

// StatusError captures a non-2xx backend response.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

// Live talks to the tutor backend over HTTP.
type Live struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// NewLive creates a client for the API rooted at baseURL.
func NewLive(baseURL string, timeout time.Duration) *Live {
	return &Live{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		timeout:    timeout,
		httpClient: newHTTPClient(),
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Live) WithHTTPClient(hc *http.Client) *Live {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// Send posts message to /chat and returns the reply text.
func (c *Live) Send(ctx context.Context, message string) (string, error) {
	payload, err := json.Marshal(chat.ChatRequest{Message: message})
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}

	var out struct {
		Response string            `json:"response"`
		Sources  []json.RawMessage `json:"sources"`
	}
	if err := c.do(ctx, http.MethodPost, "/chat", payload, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.Response) == "" {
		return "", fmt.Errorf("%w: empty response from %s/chat", ErrNetworkFailure, c.baseURL)
	}
	return out.Response, nil
}

// ListModules fetches the course module listing.
func (c *Live) ListModules(ctx context.Context) ([]content.Module, error) {
	var modules []content.Module
	if err := c.do(ctx, http.MethodGet, "/modules", nil, &modules); err != nil {
		return nil, err
	}
	return modules, nil
}

func (c *Live) do(ctx context.Context, method, path string, body []byte, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	url := c.baseURL + path
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrNetworkFailure, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrNetworkFailure, method, url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrNetworkFailure, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{StatusCode: resp.StatusCode, URL: url, Body: strings.TrimSpace(string(raw))}
		return fmt.Errorf("%w: %w", ErrNetworkFailure, statusErr)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrNetworkFailure, err)
	}
	return nil
}

// newHTTPClient sets transport-level timeouts only; request lifetime is
// governed by the caller's context.
func newHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{Transport: transport}
}
