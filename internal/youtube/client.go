// Package youtube wraps outbound calls to the YouTube Data API and the
// transcript source. Transient failure is absorbed here: exhausted HTTP
// retries degrade to empty payloads, and a missing transcript is always
// represented by a fallback string, never an error.
package youtube

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/tubescope/internal/logger"
	"github.com/timmy/tubescope/internal/retry"
)

const defaultBaseURL = "https://www.googleapis.com/youtube/v3"
const defaultTimedTextURL = "https://video.google.com/timedtext"

// Config holds explicit client configuration; there is no ambient global
// session state.
type Config struct {
	APIKey             string
	BaseURL            string
	MaxRetries         int
	BackoffBaseSeconds float64
	ConnectTimeout     time.Duration
	ReadTimeout        time.Duration
}

// Client talks to the YouTube Data API and transcript endpoints.
type Client struct {
	http         *resty.Client
	transcript   *resty.Client
	apiKey       string
	baseURL      string
	timedTextURL string
	retryPolicy  *retry.Policy
	logger       *logger.Logger
}

// NewClient creates a Client with connection-level retry on network errors and
// HTTP 429/500/502/503/504.
func NewClient(cfg *Config, log *logger.Logger) *Client {
	if log == nil {
		log = logger.GetDefault()
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 5
	}
	backoffBase := time.Duration(cfg.BackoffBaseSeconds * float64(time.Second))
	if backoffBase <= 0 {
		backoffBase = 500 * time.Millisecond
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{Timeout: cfg.ConnectTimeout}).DialContext,
	}

	httpClient := resty.New().
		SetTransport(transport).
		SetTimeout(cfg.ReadTimeout).
		SetRetryCount(maxRetries).
		SetRetryWaitTime(backoffBase).
		SetRetryMaxWaitTime(8 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			switch r.StatusCode() {
			case http.StatusTooManyRequests,
				http.StatusInternalServerError,
				http.StatusBadGateway,
				http.StatusServiceUnavailable,
				http.StatusGatewayTimeout:
				return true
			}
			return false
		})

	// Transcript calls carry their own retry policy; the HTTP layer below
	// them must not retry as well.
	transcriptClient := resty.New().
		SetTransport(transport).
		SetTimeout(cfg.ReadTimeout)

	return &Client{
		http:         httpClient,
		transcript:   transcriptClient,
		apiKey:       cfg.APIKey,
		baseURL:      baseURL,
		timedTextURL: defaultTimedTextURL,
		retryPolicy:  retry.NewPolicy(maxRetries, backoffBase, shouldRetryTranscript),
		logger:       log,
	}
}

// apiGet performs a GET against a Data API endpoint and decodes JSON into out.
// It reports false when the call yields no usable data (network failure after
// retries, or any HTTP error status); callers treat that as "no data", not as
// a fatal condition.
func (c *Client) apiGet(ctx context.Context, endpoint string, params map[string]string, out interface{}) bool {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetQueryParam("key", c.apiKey).
		SetResult(out).
		Get(c.baseURL + "/" + endpoint)
	if err != nil {
		c.logger.WithError(err).WithField("endpoint", endpoint).Warn("YouTube API call failed")
		return false
	}
	if resp.StatusCode() >= 400 {
		c.logger.WithFields(logger.Fields{
			"endpoint": endpoint,
			"status":   resp.StatusCode(),
		}).Warn("YouTube API returned error status")
		return false
	}
	return true
}
