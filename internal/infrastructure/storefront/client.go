package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/craveup/leclerc-storefront/internal/domain/shared"
	"github.com/craveup/leclerc-storefront/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// maxResponseSize is the maximum allowed response size from the storefront API (10MB)
const maxResponseSize = 10 * 1024 * 1024

const instrumentationName = "github.com/craveup/leclerc-storefront/internal/infrastructure/storefront"

// ErrUnavailable wraps transport failures: the request never got an HTTP answer
var ErrUnavailable = errors.New("storefront: API unavailable")

// TokenSource supplies the optional bearer token for a request
type TokenSource interface {
	Token(ctx context.Context) (string, bool)
}

// Client issues authenticated JSON requests to the storefront API
type Client struct {
	config     Config
	httpClient *http.Client
	tokens     TokenSource
	logger     *zap.Logger
	tracer     trace.Tracer
	metrics    *clientMetrics
	now        func() time.Time
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTokenSource sets where bearer tokens come from
func WithTokenSource(tokens TokenSource) ClientOption {
	return func(c *Client) {
		c.tokens = tokens
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTracer sets the tracer used for request spans
func WithTracer(tracer trace.Tracer) ClientOption {
	return func(c *Client) {
		c.tracer = tracer
	}
}

// WithMeter records request metrics on meter
func WithMeter(meter metric.Meter) ClientOption {
	return func(c *Client) {
		c.metrics = newClientMetrics(meter)
	}
}

// NewClient creates a storefront API client with the given configuration
func NewClient(config Config, opts ...ClientOption) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		logger: zap.NewNop(),
		tracer: otel.Tracer(instrumentationName),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.metrics == nil {
		c.metrics = newClientMetrics(otel.Meter(instrumentationName))
	}

	if c.config.MockFallback {
		c.logger.Warn("storefront mock fallback enabled; unreachable POSTs will return canned data")
	}
	return c, nil
}

// MockFallbackEnabled reports whether POSTs fall back to canned responses
func (c *Client) MockFallbackEnabled() bool {
	return c.config.MockFallback
}

// Get performs a GET and decodes the response into out (when non-nil)
func (c *Client) Get(ctx context.Context, endpoint string, out any) error {
	return c.call(ctx, http.MethodGet, endpoint, nil, out)
}

// Post performs a POST. When mock fallback is enabled and the API cannot be
// reached, a canned response for endpoint is decoded into out instead.
func (c *Client) Post(ctx context.Context, endpoint string, body, out any) error {
	raw, err := c.do(ctx, http.MethodPost, endpoint, body)
	if err != nil && c.shouldMock(ctx, err) {
		c.logger.Warn("storefront API unavailable, falling back to mock data for POST",
			zap.String("endpoint", endpoint),
			zap.Error(err),
		)
		c.metrics.mockFallback(ctx, endpoint)
		raw, err = mockPostResponse(endpoint, body, c.now())
	}
	if err != nil {
		return err
	}
	return decode(raw, out)
}

// Put performs a PUT
func (c *Client) Put(ctx context.Context, endpoint string, body, out any) error {
	return c.call(ctx, http.MethodPut, endpoint, body, out)
}

// Patch performs a PATCH
func (c *Client) Patch(ctx context.Context, endpoint string, body, out any) error {
	return c.call(ctx, http.MethodPatch, endpoint, body, out)
}

// Delete performs a DELETE; body may be nil
func (c *Client) Delete(ctx context.Context, endpoint string, body, out any) error {
	return c.call(ctx, http.MethodDelete, endpoint, body, out)
}

// GetRaw performs a GET and returns the response body untouched
func (c *Client) GetRaw(ctx context.Context, endpoint string) (json.RawMessage, error) {
	raw, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(raw), nil
}

func (c *Client) call(ctx context.Context, method, endpoint string, body, out any) error {
	raw, err := c.do(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	return decode(raw, out)
}

// shouldMock is true only for transport failures the caller did not cause by cancelling
func (c *Client) shouldMock(ctx context.Context, err error) bool {
	return c.config.MockFallback && errors.Is(err, ErrUnavailable) && ctx.Err() == nil
}

// ---------------------------------------------------------------------------
// Transport
// ---------------------------------------------------------------------------

// do performs an HTTP request to the storefront API
func (c *Client) do(ctx context.Context, method, endpoint string, body any) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, "storefront "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("storefront.endpoint", endpoint),
		),
	)
	defer span.End()

	start := c.now()
	raw, status, err := c.send(ctx, method, endpoint, body)
	c.metrics.record(ctx, method, status, c.now().Sub(start))

	if status > 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Debug("storefront request failed",
			zap.String("method", method),
			zap.String("endpoint", endpoint),
			zap.Int("status", status),
			zap.Error(err),
		)
		return nil, err
	}
	return raw, nil
}

func (c *Client) send(ctx context.Context, method, endpoint string, body any) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("storefront: failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+endpoint, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("storefront: failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.config.APIKey)
	if c.tokens != nil {
		if token, ok := c.tokens.Token(ctx); ok && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("storefront: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, resp.StatusCode, &shared.RemoteError{
			StatusCode: resp.StatusCode,
			Message:    remoteMessage(raw),
			Body:       raw,
		}
	}
	return raw, resp.StatusCode, nil
}

// remoteMessage pulls a human readable message out of an error body.
// It understands {"message": "..."}, {"error": "..."} and {"error": {"message": "..."}}.
func remoteMessage(body []byte) string {
	var payload struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	if len(payload.Error) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(payload.Error, &text); err == nil {
		return text
	}
	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload.Error, &nested); err == nil {
		return nested.Message
	}
	return ""
}

func decode(raw []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("storefront: failed to parse response: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Metrics
// ---------------------------------------------------------------------------

type clientMetrics struct {
	requests *telemetry.Counter
	duration *telemetry.Histogram
	mocks    *telemetry.Counter
}

func newClientMetrics(meter metric.Meter) *clientMetrics {
	m := &clientMetrics{}
	m.requests, _ = telemetry.NewCounter(meter,
		"storefront_client_request_total",
		"Total number of storefront API requests",
		"{request}",
	)
	m.duration, _ = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "storefront_client_request_duration_seconds",
		Description: "Storefront API request latency in seconds",
		Unit:        "s",
		Boundaries:  telemetry.HTTPDurationBuckets,
	})
	m.mocks, _ = telemetry.NewCounter(meter,
		"storefront_client_mock_fallback_total",
		"POSTs answered with mock data because the API was unreachable",
		"{request}",
	)
	return m
}

func (m *clientMetrics) record(ctx context.Context, method string, status int, elapsed time.Duration) {
	attrs := []attribute.KeyValue{
		telemetry.AttrHTTPMethod.String(method),
		telemetry.AttrHTTPStatusCode.String(strconv.Itoa(status)),
	}
	if m.requests != nil {
		m.requests.Inc(ctx, attrs...)
	}
	if m.duration != nil {
		m.duration.RecordDuration(ctx, elapsed, attrs...)
	}
}

func (m *clientMetrics) mockFallback(ctx context.Context, endpoint string) {
	if m.mocks != nil {
		m.mocks.Inc(ctx, attribute.String("storefront.endpoint", endpoint))
	}
}
