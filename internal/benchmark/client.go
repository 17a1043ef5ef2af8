// Package benchmark collects market index levels used as performance
// benchmarks and keeps the stored series up to date.
package benchmark

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"investorportal/internal/analytics"
	"investorportal/internal/calendar"
	"investorportal/internal/utils"
)

const (
	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 5
)

// Client reads index history from a JSON index-data service.
//
// The service is expected to answer
//
//	GET {base}/v1/indices/{symbol}/history?from=2024-01-01&to=2024-12-31
//
// with {"symbol": "SPX", "prices": [{"date": "2024-01-02", "value": "4742.83"}]}.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *utils.AppLogger
	limiter    *rate.Limiter
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger *utils.AppLogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets a custom rate limit. Non-positive values keep the
// default.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

func NewClient(baseURL, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError is a non-200 answer from the index-data service.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("index API error: %s (status %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

type historyResponse struct {
	Symbol string                   `json:"symbol"`
	Prices []analytics.RawBenchmark `json:"prices"`
}

// Name identifies the client as a price source.
func (c *Client) Name() string { return "api" }

// History returns the levels of symbol between from and to, inclusive,
// sorted by date.
func (c *Client) History(ctx context.Context, symbol string, from, to time.Time) ([]analytics.BenchmarkRecord, error) {
	params := url.Values{}
	params.Set("from", calendar.Format(from))
	params.Set("to", calendar.Format(to))

	var resp historyResponse
	path := fmt.Sprintf("/v1/indices/%s/history", url.PathEscape(symbol))
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch %s history: %w", symbol, err)
	}

	records, err := analytics.ParseBenchmark(resp.Prices)
	if err != nil {
		return nil, fmt.Errorf("invalid %s history: %w", symbol, err)
	}
	return records, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit exceeded: %w", err)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	if c.logger != nil {
		c.logger.Debug("Index API request: %s", c.baseURL+path)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
