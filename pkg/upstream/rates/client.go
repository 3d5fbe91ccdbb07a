package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/cartshare/cartshare-backend/pkg/errors"
	"github.com/cartshare/cartshare-backend/pkg/metrics"
)

// Rate is a single exchange rate quote with four decimal places of
// precision.
type Rate struct {
	From      string          `json:"from"`
	To        string          `json:"to"`
	Rate      decimal.Decimal `json:"rate"`
	Timestamp time.Time       `json:"timestamp"`
}

// Client is the currency collaborator contract.
type Client interface {
	GetRate(ctx context.Context, from, to string) (*Rate, error)
	GetSupportedCurrencies(ctx context.Context) ([]string, error)
}

// HTTPClient talks to the currency mock service over HTTP.
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

// NewHTTPClient builds a rates client for the given base URL.
func NewHTTPClient(baseURL string, timeout time.Duration, opts ...Option) (*HTTPClient, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("rates service base url is required")
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

// GetRate fetches the current quote for a currency pair.
func (c *HTTPClient) GetRate(ctx context.Context, from, to string) (*Rate, error) {
	start := time.Now()
	defer func() { c.metrics.ObserveUpstream("rates", "get_rate", time.Since(start)) }()

	endpoint := fmt.Sprintf("%s/rates?from=%s&to=%s", c.baseURL, url.QueryEscape(from), url.QueryEscape(to))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build rates request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "call rates service")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var rate Rate
		if err := json.NewDecoder(resp.Body).Decode(&rate); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode rates response")
		}
		return &rate, nil
	case http.StatusNotFound:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported currency pair %s/%s", from, to))
	default:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("rates service returned %d", resp.StatusCode))
	}
}

// GetSupportedCurrencies lists the currency codes the collaborator quotes.
func (c *HTTPClient) GetSupportedCurrencies(ctx context.Context) ([]string, error) {
	start := time.Now()
	defer func() { c.metrics.ObserveUpstream("rates", "get_currencies", time.Since(start)) }()

	endpoint := fmt.Sprintf("%s/currencies", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build currencies request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "call rates service")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("rates service returned %d", resp.StatusCode))
	}

	var payload struct {
		Currencies []string `json:"currencies"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode currencies response")
	}
	return payload.Currencies, nil
}
