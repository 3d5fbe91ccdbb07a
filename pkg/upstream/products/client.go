package products

import (
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

// Product is the catalog view exposed by the product collaborator. Prices are
// USD minor units.
type Product struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"priceCents"`
}

// Client is the product collaborator contract. GetProduct returns (nil, nil)
// for unknown or discontinued products; GetProducts omits them.
type Client interface {
	GetProduct(ctx context.Context, id string) (*Product, error)
	GetProducts(ctx context.Context, ids []string) (map[string]*Product, error)
}

// HTTPClient talks to the product mock service over HTTP.
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

// NewHTTPClient builds a product client for the given base URL.
func NewHTTPClient(baseURL string, timeout time.Duration, opts ...Option) (*HTTPClient, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("product service base url is required")
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

// GetProduct fetches one product; nil result means unknown/discontinued.
func (c *HTTPClient) GetProduct(ctx context.Context, id string) (*Product, error) {
	start := time.Now()
	defer func() { c.metrics.ObserveUpstream("products", "get_product", time.Since(start)) }()

	endpoint := fmt.Sprintf("%s/products/%s", c.baseURL, url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build product request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "call product service")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var product Product
		if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode product response")
		}
		return &product, nil
	case http.StatusNotFound:
		return nil, nil
	default:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("product service returned %d", resp.StatusCode))
	}
}

// GetProducts fetches a batch; unknown ids are omitted from the result.
func (c *HTTPClient) GetProducts(ctx context.Context, ids []string) (map[string]*Product, error) {
	start := time.Now()
	defer func() { c.metrics.ObserveUpstream("products", "get_products", time.Since(start)) }()

	endpoint := fmt.Sprintf("%s/products?ids=%s", c.baseURL, url.QueryEscape(strings.Join(ids, ",")))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build products request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "call product service")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("product service returned %d", resp.StatusCode))
	}

	var payload struct {
		Products []Product `json:"products"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode products response")
	}

	result := make(map[string]*Product, len(payload.Products))
	for i := range payload.Products {
		product := payload.Products[i]
		result[product.ID] = &product
	}
	return result, nil
}
