package siray

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
)

// maxErrorBody caps how much of an error response is read when the
// service returns garbage instead of JSON.
const maxErrorBody = 2 * 1024 * 1024

// request issues one authenticated JSON round trip and decodes the
// response. A 2xx response with an empty body decodes to an empty map.
// Non-2xx statuses are mapped to the typed error variants; the transport
// never retries.
func (c *Client) request(ctx context.Context, method, base, path string, body map[string]any) (map[string]any, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("siray: marshal request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, base+path, reader)
	if err != nil {
		return nil, fmt.Errorf("siray: build request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("siray: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("siray: read response body: %w", err)
	}

	out := map[string]any{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("siray: decode response body: %w", err)
	}

	return out, nil
}

func (c *Client) post(ctx context.Context, path string, body map[string]any) (map[string]any, error) {
	return c.request(ctx, http.MethodPost, c.baseURL, path, body)
}

func (c *Client) get(ctx context.Context, path string) (map[string]any, error) {
	return c.request(ctx, http.MethodGet, c.baseURL, path, nil)
}

// postGateway posts to the credential-exchange gateway, which may live on
// a different host than the generation API.
func (c *Client) postGateway(ctx context.Context, path string, body map[string]any) (map[string]any, error) {
	return c.request(ctx, http.MethodPost, c.gatewayURL, path, body)
}

func decodeError(resp *http.Response) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return &APIError{
			Message:    fmt.Sprintf("failed to read error body: %v", err),
			StatusCode: resp.StatusCode,
		}
	}

	var body apiErrorBody
	// A non-JSON error body still maps by status; keep whatever text we got.
	if err := json.Unmarshal(raw, &body); err != nil && len(bytes.TrimSpace(raw)) > 0 {
		body.Message = string(bytes.TrimSpace(raw))
	}

	return errorFromStatus(resp.StatusCode, &body)
}
