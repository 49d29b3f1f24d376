// Package onemap provides a rate-limited client for the OneMap SG elastic
// search API, used to look up buildings by postal code.
package onemap

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/onemapsg/building-registry/internal/model"
)

const (
	// DefaultBaseURL is the production OneMap endpoint.
	DefaultBaseURL = "https://www.onemap.gov.sg"

	searchPath = "/api/common/elastic/search"
)

// Client looks up buildings registered under a postal code.
type Client interface {
	// Search returns every building record the API holds for the postal
	// code, following pagination. Zero results is not an error.
	Search(ctx context.Context, postalCode string) ([]model.Building, error)
}

// Option configures the client.
type Option func(*client)

// WithBaseURL overrides the API base URL (used by tests).
func WithBaseURL(baseURL string) Option {
	return func(c *client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithRateLimit sets the requests-per-second limit for API calls.
func WithRateLimit(rps float64) Option {
	return func(c *client) {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

type client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new OneMap Client with the given options.
func NewClient(opts ...Option) Client {
	c := &client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		limiter:    rate.NewLimiter(20, 20), // OneMap default: 20 req/s
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
