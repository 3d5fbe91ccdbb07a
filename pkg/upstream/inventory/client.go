package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/cartshare/cartshare-backend/pkg/errors"
	"github.com/cartshare/cartshare-backend/pkg/metrics"
)

// Availability is a point-in-time stock report for one product: units still
// free to reserve, and units currently held by reservations.
type Availability struct {
	Available int `json:"available"`
	Reserved  int `json:"reserved"`
}

// Client is the inventory collaborator contract. Reserve is an atomic
// decrement that reports false when stock is insufficient; Release is
// idempotent and floors at zero.
type Client interface {
	GetAvailable(ctx context.Context, id string) (int, error)
	Reserve(ctx context.Context, id string, qty int) (bool, error)
	Release(ctx context.Context, id string, qty int) error
	CheckBatch(ctx context.Context, ids []string) (map[string]Availability, error)
}

// HTTPClient talks to the inventory mock service over HTTP.
type HTTPClient struct {
	httpClient *http.Client
	baseURL    string
	metrics    *metrics.CartMetrics
}

// Option configures optional client behavior.
type Option func(*HTTPClient)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *HTTPClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithMetrics records call latency on the provided metrics.
func WithMetrics(m *metrics.CartMetrics) Option {
	return func(c *HTTPClient) {
		c.metrics = m
	}
}

// NewHTTPClient builds an inventory client for the given base URL.
func NewHTTPClient(baseURL string, timeout time.Duration, opts ...Option) (*HTTPClient, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("inventory service base url is required")
	}
	client := &HTTPClient{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// GetAvailable returns the currently available quantity for a product.
func (c *HTTPClient) GetAvailable(ctx context.Context, id string) (int, error) {
	start := time.Now()
	defer func() { c.metrics.ObserveUpstream("inventory", "get_available", time.Since(start)) }()

	endpoint := fmt.Sprintf("%s/inventory/%s", c.baseURL, url.PathEscape(id))
	var payload struct {
		ProductID string `json:"productId"`
		Available int    `json:"available"`
	}
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return 0, err
	}
	return payload.Available, nil
}

// Reserve atomically decrements available stock; false means insufficient.
func (c *HTTPClient) Reserve(ctx context.Context, id string, qty int) (bool, error) {
	start := time.Now()
	defer func() { c.metrics.ObserveUpstream("inventory", "reserve", time.Since(start)) }()

	endpoint := fmt.Sprintf("%s/inventory/%s/reserve", c.baseURL, url.PathEscape(id))
	var payload struct {
		Reserved bool `json:"reserved"`
	}
	if err := c.postJSON(ctx, endpoint, map[string]int{"quantity": qty}, &payload); err != nil {
		return false, err
	}
	return payload.Reserved, nil
}

// Release returns quantity to the pool; the collaborator floors at zero.
func (c *HTTPClient) Release(ctx context.Context, id string, qty int) error {
	start := time.Now()
	defer func() { c.metrics.ObserveUpstream("inventory", "release", time.Since(start)) }()

	endpoint := fmt.Sprintf("%s/inventory/%s/release", c.baseURL, url.PathEscape(id))
	return c.postJSON(ctx, endpoint, map[string]int{"quantity": qty}, nil)
}

// CheckBatch returns the stock report for every requested product id.
func (c *HTTPClient) CheckBatch(ctx context.Context, ids []string) (map[string]Availability, error) {
	start := time.Now()
	defer func() { c.metrics.ObserveUpstream("inventory", "check_batch", time.Since(start)) }()

	endpoint := fmt.Sprintf("%s/inventory/batch", c.baseURL)
	var payload struct {
		Items map[string]Availability `json:"items"`
	}
	if err := c.postJSON(ctx, endpoint, map[string][]string{"ids": ids}, &payload); err != nil {
		return nil, err
	}
	return payload.Items, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, endpoint string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build inventory request")
	}
	return c.do(req, dest)
}

func (c *HTTPClient) postJSON(ctx context.Context, endpoint string, body any, dest any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "encode inventory request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build inventory request")
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, dest)
}

func (c *HTTPClient) do(req *http.Request, dest any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "call inventory service")
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("inventory service returned %d", resp.StatusCode))
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode inventory response")
	}
	return nil
}
