// Package eventmail is a Go client for the eventmail submission API.
package eventmail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Config holds the configuration for the eventmail client.
type Config struct {
	// BaseURL is the root URL of the eventmail server,
	// e.g. "https://mail.bristoevents.co.ke".
	BaseURL string

	// HTTPClient is an optional custom HTTP client.
	// If nil, a default client with a 60s timeout is used; submissions
	// wait for outbound mail delivery.
	HTTPClient *http.Client
}

func (c *Config) defaults() {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")
}

// Client calls the eventmail API.
type Client struct {
	cfg Config
}

// NewClient creates a new eventmail client with the given configuration.
func NewClient(cfg Config) *Client {
	cfg.defaults()
	return &Client{cfg: cfg}
}

// SubmitBooking posts a booking. On success the returned response carries
// the booking id assigned by the server.
func (c *Client) SubmitBooking(ctx context.Context, req BookingRequest) (*BookingResponse, error) {
	var resp BookingResponse
	if err := c.post(ctx, "/api/book", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SubmitContact posts a contact form message.
func (c *Client) SubmitContact(ctx context.Context, req ContactRequest) (*ContactResponse, error) {
	var resp ContactResponse
	if err := c.post(ctx, "/api/contact", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, in, out interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("eventmail: failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("eventmail: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("eventmail: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("eventmail: failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return parseAPIError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("eventmail: failed to parse response: %w", err)
	}
	return nil
}
