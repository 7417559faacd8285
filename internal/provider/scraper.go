package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/utafrali/reviewhub/pkg/httpclient"
)

const defaultFetchTimeout = 15 * time.Second

// ScraperClient talks to one upstream scraper endpoint over HTTP. Each
// source gets its own circuit breaker so a flapping upstream is isolated
// from its siblings.
type ScraperClient struct {
	source  string
	baseURL string
	client  *httpclient.CircuitBreakerClient
	timeout time.Duration
	logger  *slog.Logger
}

// NewScraperClient builds a provider client for one source. baseURL points
// at the source's review endpoint, e.g. "http://scraper:8081/amazon".
func NewScraperClient(source, baseURL string, timeout time.Duration, logger *slog.Logger) *ScraperClient {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}

	base := httpclient.New(httpclient.Config{
		Timeout:         timeout,
		MaxRetries:      0, // retry is the caller's responsibility
		MaxConnsPerHost: 10,
	})

	return &ScraperClient{
		source:  source,
		baseURL: baseURL,
		client:  httpclient.NewCircuitBreakerClient(base, httpclient.DefaultCircuitBreakerConfig("provider_"+source), logger),
		timeout: timeout,
		logger:  logger,
	}
}

// Source returns the source name this client serves.
func (c *ScraperClient) Source() string {
	return c.source
}

// Fetch retrieves raw review payloads for a product within a bounded
// timeout. An empty list is a valid success.
func (c *ScraperClient) Fetch(ctx context.Context, productID int64) ([]RawReview, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := c.baseURL + "/reviews?product_id=" + strconv.FormatInt(productID, 10)

	resp, err := c.client.Get(ctx, url)
	if err != nil {
		return nil, &Error{Source: c.source, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Source: c.source, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var payload struct {
		Reviews []RawReview `json:"reviews"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &Error{Source: c.source, Err: fmt.Errorf("decode payload: %w", err)}
	}

	c.logger.DebugContext(ctx, "fetched reviews from provider",
		slog.String("source", c.source),
		slog.Int64("product_id", productID),
		slog.Int("count", len(payload.Reviews)),
	)

	return payload.Reviews, nil
}
