package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	pushPath = "/sync/push"
	pullPath = "/sync/pull"

	// internalTokenHeader authenticates against servers that gate the sync
	// endpoints behind a shared secret.
	internalTokenHeader = "X-Internal-Token"
)

// API is the server surface the engine depends on. Client implements it
// over HTTP; tests substitute fakes.
type API interface {
	Push(ctx context.Context, req *PushRequest) (*PushResponse, error)
	Pull(ctx context.Context, cursor string) (*PullResponse, error)
}

// Doer abstracts the HTTP client for injection.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// StatusError is a non-2xx response. The whole batch it covers is treated
// as failed; there is no partial success without explicit acknowledgment.
type StatusError struct {
	Op     string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed with status %d", e.Op, e.Status)
}

// Client talks to the sync server over HTTP/JSON.
type Client struct {
	baseURL string
	token   string
	http    Doer
}

// NewClient builds a Client for baseURL. token may be empty; doer defaults
// to an http.Client with a request timeout.
func NewClient(baseURL, token string, doer Doer) *Client {
	if doer == nil {
		doer = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: baseURL, token: token, http: doer}
}

func (c *Client) Push(ctx context.Context, req *PushRequest) (*PushResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal push request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+pushPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.authorize(httpReq)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("push: %w", err)
	}
	defer drain(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Op: "push", Status: resp.StatusCode}
	}

	var out PushResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: invalid push response: %w", ErrProtocol, err)
	}
	if err := validateResponse(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Pull(ctx context.Context, cursor string) (*PullResponse, error) {
	u := c.baseURL + pullPath
	if cursor != "" {
		u += "?cursor=" + url.QueryEscape(cursor)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	c.authorize(httpReq)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("pull: %w", err)
	}
	defer drain(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Op: "pull", Status: resp.StatusCode}
	}

	var out PullResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: invalid pull response: %w", ErrProtocol, err)
	}
	if err := validateResponse(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ping checks server reachability. Any HTTP response counts as reachable;
// only transport-level failures are errors.
func (c *Client) Ping(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pullPath, nil)
	if err != nil {
		return err
	}
	c.authorize(httpReq)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	drain(resp.Body)
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set(internalTokenHeader, c.token)
	}
}

func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
