package graph

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/teemow/weekplanner/internal/instrumentation"
	"github.com/teemow/weekplanner/internal/logging"
)

// DefaultBaseURL is the Graph v1.0 endpoint.
const DefaultBaseURL = "https://graph.microsoft.com/v1.0"

const defaultTimeout = 30 * time.Second

// Client talks to the calendar of the signed-in user through Microsoft
// Graph. It implements schedule.Backend.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  logging.Logger
	metrics *instrumentation.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the Graph endpoint. An empty value keeps the default.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimSuffix(u, "/")
		}
	}
}

// WithHTTPClient replaces the HTTP client. The client is responsible for
// authenticating requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRateLimit throttles outgoing requests to rps per second.
// Zero or less disables throttling.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithLogger sets the client logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics records remote operation metrics on m.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a Client whose requests carry tokens from ts.
func NewClient(ctx context.Context, ts oauth2.TokenSource, opts ...Option) *Client {
	hc := oauth2.NewClient(ctx, ts)
	hc.Timeout = defaultTimeout

	c := &Client{
		baseURL: DefaultBaseURL,
		http:    hc,
		logger:  logging.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(logging.Backend(instrumentation.BackendGraph))
	return c
}

// NewStaticTokenClient creates a Client authenticated with a fixed bearer
// token.
func NewStaticTokenClient(ctx context.Context, accessToken string, opts ...Option) *Client {
	return NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}), opts...)
}

// preferZone builds the Prefer header asking Graph to express times in zone.
func preferZone(zone string) string {
	return fmt.Sprintf("outlook.timezone=%q", zone)
}

// do sends one request and decodes the JSON response into out.
func (c *Client) do(ctx context.Context, op, zone, method, reqURL string, in, out any) (err error) {
	ctx, span := instrumentation.StartRemoteSpan(ctx, instrumentation.BackendGraph, op,
		instrumentation.NewSpanAttributeBuilder().WithZone(zone).Build()...)
	start := time.Now()
	defer func() {
		status := instrumentation.StatusSuccess
		if err != nil {
			status = instrumentation.StatusError
		}
		c.metrics.RecordRemoteOperation(ctx, instrumentation.BackendGraph, op, status, zone, time.Since(start))
		instrumentation.EndSpan(span, err)
	}()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("failed to wait for rate limiter: %w", err)
		}
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if zone != "" {
		req.Header.Set("Prefer", preferZone(zone))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := decodeAPIError(resp)
		c.logger.Warn("graph request failed",
			logging.Operation(op),
			logging.Err(apiErr))
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}
