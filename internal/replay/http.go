package replay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/drowsy/internal/domain/types"
)

// Outcome of submitting one frame.
type Outcome string

// Frame submission outcomes.
const (
	OutcomeProcessed Outcome = "processed"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeRejected  Outcome = "rejected"
	OutcomeFailed    Outcome = "failed"
)

// Client talks to the drowsiness monitor HTTP API.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client with a per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{baseURL: baseURL, client: &http.Client{Timeout: timeout}}
}

// Health checks GET /healthz.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

// Status fetches GET /status.
func (c *Client) Status(ctx context.Context) (types.StatusView, error) {
	var v types.StatusView
	resp, err := c.do(ctx, http.MethodGet, "/status", nil)
	if err != nil {
		return v, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return v, fmt.Errorf("status: unexpected code %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return v, fmt.Errorf("decode status: %w", err)
	}
	return v, nil
}

// PostFrame submits one frame. Transport errors yield OutcomeFailed.
func (c *Client) PostFrame(ctx context.Context, f Frame) (Outcome, *types.FrameView, error) { //nolint:gocritic // hugeParam
	body, err := json.Marshal(f)
	if err != nil {
		return OutcomeFailed, nil, fmt.Errorf("failed to marshal frame: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPost, "/frames", bytes.NewReader(body))
	if err != nil {
		return OutcomeFailed, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return OutcomeFailed, nil, fmt.Errorf("read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var fr FrameResponse
		if err := json.Unmarshal(data, &fr); err != nil {
			return OutcomeFailed, nil, fmt.Errorf("decode response: %w", err)
		}
		if fr.Duplicate {
			return OutcomeDuplicate, nil, nil
		}
		return OutcomeProcessed, fr.Result, nil
	case http.StatusBadRequest:
		return OutcomeRejected, nil, fmt.Errorf("frame %s rejected: %s", f.ID, bytes.TrimSpace(data))
	default:
		return OutcomeFailed, nil, fmt.Errorf("frame %s: unexpected code %d", f.ID, resp.StatusCode)
	}
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.client.Do(req)
}
