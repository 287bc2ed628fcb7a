// Package engine is the HTTP client for the desktop focus engine.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/user/focusguard/internal/types"
)

// ErrUnreachable is the single signal all transport failures collapse into:
// connection errors, timeouts, non-2xx responses, and malformed bodies.
var ErrUnreachable = errors.New("engine unreachable")

// Client is the focus engine API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retry      *RetryPolicy
}

// Option is a function that configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(client *Client) {
		client.httpClient.Timeout = d
	}
}

// WithRetryPolicy sets the retry policy used for proof fetches and license
// verification. Status polls are never retried.
func WithRetryPolicy(p *RetryPolicy) Option {
	return func(client *Client) {
		client.retry = p
	}
}

// NewClient creates a new focus engine client for the given base URL
// (e.g. "http://192.168.1.20:5000").
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		retry: DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Status fetches the current status snapshot for a room. Every failure mode
// maps to ErrUnreachable so callers can fail safe to IDLE without
// inspecting causes.
func (c *Client) Status(ctx context.Context, room types.RoomCode) (*types.StatusSnapshot, error) {
	url := fmt.Sprintf("%s/status/%s", c.baseURL, room)

	var snap types.StatusSnapshot
	if err := c.doRequest(ctx, http.MethodGet, url, nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// FetchProof fetches the proof-of-distraction snapshot for a room. The
// cache-bust parameter changes per call so intermediaries never serve a
// previous episode's image.
func (c *Client) FetchProof(ctx context.Context, room types.RoomCode) ([]byte, error) {
	var data []byte
	err := c.retry.Execute(ctx, func() error {
		url := fmt.Sprintf("%s/proofs/proof_%s.jpg?t=%d", c.baseURL, room, time.Now().UnixMilli())
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("build proof request: %w", err)
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("fetch proof: %w", ErrUnreachable)
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("fetch proof: status %d: %w", resp.StatusCode, ErrUnreachable)
		}
		data, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read proof body: %w", ErrUnreachable)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// VerifyResult is the decoded body of POST /verify_license.
type VerifyResult struct {
	Valid bool   `json:"valid"`
	Tier  string `json:"tier,omitempty"`
}

// VerifyLicense checks a license key against the engine. A transport
// failure returns ErrUnreachable; an explicit rejection returns a result
// with Valid false. Callers treat both as "not entitled".
func (c *Client) VerifyLicense(ctx context.Context, key string) (*VerifyResult, error) {
	url := fmt.Sprintf("%s/verify_license", c.baseURL)
	body := map[string]string{"license_key": key}

	var result VerifyResult
	err := c.retry.Execute(ctx, func() error {
		return c.doRequest(ctx, http.MethodPost, url, body, &result)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// doRequest performs an HTTP request and decodes the JSON response,
// normalizing every failure into ErrUnreachable.
func (c *Client) doRequest(ctx context.Context, method, url string, body any, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, url, ErrUnreachable)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: status %d: %w", method, url, resp.StatusCode, ErrUnreachable)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode response: %w", ErrUnreachable)
		}
	}
	return nil
}
