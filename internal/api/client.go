package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DefaultTimeout bounds every backend call.
const DefaultTimeout = 10 * time.Second

var tracer = otel.Tracer("thiepcuoi.vn/web/internal/api")

// Client calls the wedding invitation REST API. With an empty base URL it serves an
// in-process catalog from fixtures so the site runs without a backend.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
	offline *offlineBackend
}

// Option customises a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger attaches a logger for transport diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient constructs an API client. When baseURL is empty, the client serves fixture data.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.baseURL == "" {
		off, err := newOfflineBackend()
		if err != nil {
			return nil, err
		}
		c.offline = off
		return c, nil
	}
	if _, err := url.Parse(c.baseURL); err != nil {
		return nil, fmt.Errorf("api: invalid base url: %w", err)
	}
	return c, nil
}

// Offline reports whether the client serves fixtures instead of calling a backend.
func (c *Client) Offline() bool { return c == nil || c.offline != nil }

type call struct {
	op     string
	method string
	path   []string
	query  url.Values
	body   any
}

func (c *Client) do(ctx context.Context, cl call, out any) (err error) {
	ctx, span := tracer.Start(ctx, "api."+cl.op, trace.WithSpanKind(trace.SpanKindClient))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	endpoint, err := url.JoinPath(c.baseURL, cl.path...)
	if err != nil {
		return err
	}
	if len(cl.query) > 0 {
		endpoint += "?" + cl.query.Encode()
	}
	span.SetAttributes(
		attribute.String("http.request.method", cl.method),
		attribute.String("url.full", endpoint),
	)

	var body io.Reader
	if cl.body != nil {
		payload, err := json.Marshal(cl.body)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, endpoint, body)
	if err != nil {
		return err
	}
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token := TokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("api request failed", zap.String("op", cl.op), zap.Error(err))
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, cl.op, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("api: decode %s: %w", cl.op, err)
	}
	return nil
}

type tokenKey struct{}

// WithToken attaches the bearer token used for calls made with ctx.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, strings.TrimSpace(token))
}

// TokenFromContext returns the bearer token, if any.
func TokenFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(tokenKey{}).(string)
	return v
}
