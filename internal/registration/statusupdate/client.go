package statusupdate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const updatePath = "/admin/update-service-status"

// ErrUpstreamRejected is returned when the status endpoint answers with a
// non-2xx status or reports success=false.
var ErrUpstreamRejected = errors.New("upstream rejected status update")

// HTTPClient forwards status changes to the admin side channel.
type HTTPClient struct {
	baseURL   string
	authToken string
	client    *http.Client
}

type ClientOption func(*HTTPClient)

func WithAuthToken(token string) ClientOption {
	return func(c *HTTPClient) {
		c.authToken = token
	}
}

func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *HTTPClient) {
		if timeout > 0 {
			c.client = &http.Client{Timeout: timeout, Transport: c.client.Transport}
		}
	}
}

func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		if client != nil {
			c.client = client
		}
	}
}

func NewHTTPClient(baseURL string, opts ...ClientOption) (*HTTPClient, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("status base url is required")
	}
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type updateBody struct {
	TicketID string `json:"ticketId"`
	Status   string `json:"status"`
}

type updateReply struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
}

// UpdateStatus posts {"ticketId","status"}. A 2xx reply whose body carries
// "success": false is treated as a rejection; an empty or non-JSON 2xx body is
// success.
func (c *HTTPClient) UpdateStatus(ctx context.Context, ticketID, status string) error {
	payload, err := json.Marshal(updateBody{TicketID: ticketID, Status: status})
	if err != nil {
		return fmt.Errorf("encode status update: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+updatePath, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build status update request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("status update request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var reply updateReply
	_ = json.Unmarshal(body, &reply)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if reply.Message != "" {
			return fmt.Errorf("%w: status %d: %s", ErrUpstreamRejected, resp.StatusCode, reply.Message)
		}
		return fmt.Errorf("%w: status %d", ErrUpstreamRejected, resp.StatusCode)
	}
	if reply.Success != nil && !*reply.Success {
		return fmt.Errorf("%w: %s", ErrUpstreamRejected, reply.Message)
	}
	return nil
}
