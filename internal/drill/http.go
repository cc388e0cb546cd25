package drill

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"
)

// idempotencyHeader matches the key header the API deduplicates on.
const idempotencyHeader = "Idempotency-Key"

// HTTPClient wraps http.Client and counts requests.
type HTTPClient struct {
	client   *http.Client
	baseURL  string
	requests atomic.Int64
}

// newHTTPClient creates a client for baseURL with a per-request timeout.
func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// Requests returns how many requests were sent.
func (c *HTTPClient) Requests() int64 { return c.requests.Load() }

// do sends one request. A non-nil body is sent as JSON and a non-empty key is
// sent as the idempotency key. The response body is read and closed.
func (c *HTTPClient) do(ctx context.Context, method, path string, body any, key string) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if key != "" {
		req.Header.Set(idempotencyHeader, key)
	}

	c.requests.Add(1)
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

// call sends a request, checks the status and decodes the response into out.
func (c *HTTPClient) call(ctx context.Context, method, path string, body any, key string, want int, out any) error {
	status, data, err := c.do(ctx, method, path, body, key)
	if err != nil {
		return err
	}
	if status != want {
		return fmt.Errorf("%s %s: status %d, want %d: %s", method, path, status, want, bytes.TrimSpace(data))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	return nil
}
