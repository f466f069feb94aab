package forward

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/apascualco/campusgate/internal/domain"
	"github.com/apascualco/campusgate/internal/infrastructure/observability"
	"github.com/apascualco/campusgate/internal/infrastructure/tracing"
)

// Resolver maps a service name to its base URL.
type Resolver interface {
	BaseURLOf(name domain.ServiceName) (string, error)
}

// Client is the Forwarding Client: one outbound JSON call per ForwardRequest,
// never retried.
type Client struct {
	resolver Resolver
	http     *http.Client
	exporter tracing.SpanExporter
	metrics  observability.Metrics
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithExporter(e tracing.SpanExporter) Option {
	return func(c *Client) { c.exporter = e }
}

func WithMetrics(m observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient builds a client whose calls are bounded by timeout. Zero means no
// client-side timeout.
func NewClient(resolver Resolver, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		resolver: resolver,
		http:     &http.Client{Timeout: timeout},
		exporter: &tracing.NoopExporter{},
		metrics:  observability.Noop{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Forward(ctx context.Context, req domain.ForwardRequest) (json.RawMessage, error) {
	base, err := c.resolver.BaseURLOf(req.Service)
	if err != nil {
		return nil, err
	}

	target := base + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.CarriesBody() {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding %s body: %w", req.Path, err)
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, &domain.NetworkError{Service: req.Service, URL: target, Err: err}
	}
	for name, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(name, v)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	span := propagate(ctx, httpReq.Header)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.record(ctx, req, target, span, start, 0, err)
		slog.Warn("downstream call failed",
			"service", req.Service,
			"method", req.Method,
			"url", target,
			"error", err,
		)
		return nil, &domain.NetworkError{Service: req.Service, URL: target, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	c.record(ctx, req, target, span, start, resp.StatusCode, err)
	if err != nil {
		return nil, &domain.NetworkError{Service: req.Service, URL: target, Err: err}
	}

	slog.Debug("downstream call",
		"service", req.Service,
		"method", req.Method,
		"url", target,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		derr := &domain.DownstreamError{
			Service:    req.Service,
			StatusCode: resp.StatusCode,
			Body:       raw,
			Message:    downstreamMessage(resp.StatusCode, raw),
		}
		slog.Warn("downstream returned error",
			"service", req.Service,
			"method", req.Method,
			"url", target,
			"status", resp.StatusCode,
			"message", derr.Message,
		)
		return nil, derr
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("%w: [%s] %s %s returned non-JSON body", domain.ErrMalformedResponse, req.Service, req.Method, req.Path)
	}
	return raw, nil
}

// propagate writes the request id and a child traceparent for the outbound
// call. It returns the client span, which is invalid when the inbound request
// carried no trace.
func propagate(ctx context.Context, h http.Header) tracing.SpanContext {
	if id := tracing.RequestIDFromContext(ctx); id != "" {
		h.Set(tracing.HeaderRequestID, id)
	}

	parent, ok := tracing.SpanFromContext(ctx)
	if !ok {
		return tracing.SpanContext{}
	}
	child := tracing.SpanContext{
		TraceID: parent.TraceID,
		SpanID:  tracing.NewSpanID(),
		Flags:   parent.Flags,
		State:   parent.State,
	}
	h.Set(tracing.HeaderTraceparent, child.Traceparent())
	if child.State != "" {
		h.Set(tracing.HeaderTracestate, child.State)
	}
	return child
}

func (c *Client) record(ctx context.Context, req domain.ForwardRequest, target string, span tracing.SpanContext, start time.Time, status int, err error) {
	call := outboundCall{service: req.Service, method: req.Method, url: target, span: span, start: start}
	call.finish(ctx, c.metrics, c.exporter, status, err)
}

// outboundCall is one request to a backend, JSON or streamed.
type outboundCall struct {
	service domain.ServiceName
	method  string
	url     string
	span    tracing.SpanContext
	start   time.Time
}

// finish records the call's metrics and, when the inbound request was traced,
// exports a client span. A zero status means no response was received.
func (o outboundCall) finish(ctx context.Context, metrics observability.Metrics, exporter tracing.SpanExporter, status int, err error) {
	elapsed := time.Since(o.start)
	statusLabel := "error"
	if status > 0 {
		statusLabel = strconv.Itoa(status)
	}

	metrics.Incr(observability.MetricDownstreamRequests, map[string]string{
		"service": string(o.service),
		"method":  o.method,
		"status":  statusLabel,
	})
	metrics.Observe(observability.MetricDownstreamDuration, elapsed.Seconds(), map[string]string{
		"service": string(o.service),
		"method":  o.method,
	})

	if !o.span.Valid() {
		return
	}
	parent, _ := tracing.SpanFromContext(ctx)
	attrs := map[string]string{
		"http.method":  o.method,
		"http.url":     o.url,
		"peer.service": string(o.service),
	}
	if status > 0 {
		attrs["http.status_code"] = statusLabel
	}
	if err != nil {
		attrs[tracing.AttrError] = err.Error()
	}
	exporter.Export(ctx, tracing.SpanData{
		TraceID:      o.span.TraceID,
		SpanID:       o.span.SpanID,
		ParentSpanID: parent.SpanID,
		Name:         fmt.Sprintf("%s %s", o.method, o.service),
		ServiceName:  string(o.service),
		Kind:         tracing.SpanKindClient,
		StartTime:    o.start,
		EndTime:      o.start.Add(elapsed),
		StatusCode:   status,
		Attributes:   attrs,
	})
}

// downstreamMessage picks the human readable reason out of an error body:
// "message", then "error", then the status text. Validation errors that come
// as a list of messages are joined.
func downstreamMessage(status int, body []byte) string {
	if gjson.ValidBytes(body) {
		for _, field := range []string{"message", "error"} {
			r := gjson.GetBytes(body, field)
			if r.IsArray() {
				var parts []string
				for _, item := range r.Array() {
					if s := strings.TrimSpace(item.String()); s != "" {
						parts = append(parts, s)
					}
				}
				if len(parts) > 0 {
					return strings.Join(parts, "; ")
				}
				continue
			}
			if r.Type == gjson.String && strings.TrimSpace(r.Str) != "" {
				return r.Str
			}
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("downstream status %d", status)
}
