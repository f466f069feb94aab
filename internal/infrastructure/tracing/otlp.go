package tracing

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	resourcepb "go.opentelemetry.io/proto/otlp/resource/v1"
	tracepb "go.opentelemetry.io/proto/otlp/trace/v1"
	"google.golang.org/protobuf/proto"

	"github.com/apascualco/campusgate/internal/infrastructure/observability"
)

const (
	defaultBufferSize    = 1024
	defaultBatchSize     = 64
	defaultFlushInterval = 5 * time.Second
	exportTimeout        = 10 * time.Second

	scopeName      = "campusgate"
	attrStatusCode = "http.status_code"
)

// Outcomes of the trace_spans_total counter.
const (
	outcomeExported = "exported"
	outcomeFailed   = "failed"
	outcomeDropped  = "dropped"
)

type OTLPConfig struct {
	// Endpoint is the collector base URL; /v1/traces is appended.
	Endpoint    string
	Headers     map[string]string
	ServiceName string
	Version     string
	Environment string

	BatchSize     int
	FlushInterval time.Duration
	BufferSize    int

	Metrics observability.Metrics
}

func (c OTLPConfig) withDefaults() OTLPConfig {
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = defaultFlushInterval
	}
	if c.BufferSize <= 0 {
		c.BufferSize = defaultBufferSize
	}
	if c.Metrics == nil {
		c.Metrics = observability.Noop{}
	}
	return c
}

// OTLPExporter ships spans to an OTLP/HTTP collector in protobuf batches.
// Export never blocks: when the queue is full the span is counted as dropped.
type OTLPExporter struct {
	cfg      OTLPConfig
	url      string
	resource *resourcepb.Resource
	client   *http.Client
	queue    chan SpanData
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewOTLPExporter(cfg OTLPConfig) *OTLPExporter {
	e := newOTLPExporter(cfg)
	e.wg.Add(1)
	go e.run()
	return e
}

func newOTLPExporter(cfg OTLPConfig) *OTLPExporter {
	cfg = cfg.withDefaults()
	return &OTLPExporter{
		cfg:      cfg,
		url:      strings.TrimRight(cfg.Endpoint, "/") + "/v1/traces",
		resource: resourceOf(cfg),
		client:   &http.Client{Timeout: exportTimeout},
		queue:    make(chan SpanData, cfg.BufferSize),
		stop:     make(chan struct{}),
	}
}

func (e *OTLPExporter) Export(_ context.Context, span SpanData) {
	select {
	case e.queue <- span:
	default:
		e.count(outcomeDropped, 1)
		slog.Debug("otlp exporter: queue full, span dropped", slog.String("span", span.Name))
	}
}

// Shutdown flushes what is queued and waits for the last batch, or for ctx.
func (e *OTLPExporter) Shutdown(ctx context.Context) error {
	e.stopOnce.Do(func() { close(e.stop) })

	finished := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *OTLPExporter) run() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.cfg.FlushInterval)
	defer ticker.Stop()

	batch := make([]SpanData, 0, e.cfg.BatchSize)
	add := func(span SpanData) {
		batch = append(batch, span)
		if len(batch) >= e.cfg.BatchSize {
			e.send(batch)
			batch = batch[:0]
		}
	}
	flush := func() {
		if len(batch) > 0 {
			e.send(batch)
			batch = batch[:0]
		}
	}

	for {
		select {
		case span := <-e.queue:
			add(span)
		case <-ticker.C:
			flush()
		case <-e.stop:
			for {
				select {
				case span := <-e.queue:
					add(span)
				default:
					flush()
					return
				}
			}
		}
	}
}

func (e *OTLPExporter) send(batch []SpanData) {
	body, err := proto.Marshal(e.traces(batch))
	if err != nil {
		slog.Error("otlp exporter: failed to marshal spans", slog.Any("error", err))
		e.count(outcomeFailed, len(batch))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
	defer cancel()

	if err := e.post(ctx, body); err != nil {
		slog.Warn("otlp exporter: failed to send spans",
			slog.Int("count", len(batch)),
			slog.Any("error", err),
		)
		e.count(outcomeFailed, len(batch))
		return
	}
	e.count(outcomeExported, len(batch))
}

func (e *OTLPExporter) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-protobuf")
	for k, v := range e.cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("collector answered %d", resp.StatusCode)
	}
	return nil
}

func (e *OTLPExporter) count(outcome string, n int) {
	e.cfg.Metrics.Add(observability.MetricTraceSpans, float64(n), map[string]string{"outcome": outcome})
}

func (e *OTLPExporter) traces(batch []SpanData) *tracepb.TracesData {
	spans := make([]*tracepb.Span, 0, len(batch))
	for _, s := range batch {
		spans = append(spans, toProtoSpan(s))
	}

	return &tracepb.TracesData{
		ResourceSpans: []*tracepb.ResourceSpans{{
			Resource: e.resource,
			ScopeSpans: []*tracepb.ScopeSpans{{
				Scope: &commonpb.InstrumentationScope{Name: scopeName, Version: e.cfg.Version},
				Spans: spans,
			}},
		}},
	}
}

func resourceOf(cfg OTLPConfig) *resourcepb.Resource {
	attrs := []*commonpb.KeyValue{stringAttr("service.name", cfg.ServiceName)}
	if cfg.Version != "" {
		attrs = append(attrs, stringAttr("service.version", cfg.Version))
	}
	if cfg.Environment != "" {
		attrs = append(attrs, stringAttr("deployment.environment", cfg.Environment))
	}
	return &resourcepb.Resource{Attributes: attrs}
}

func toProtoSpan(s SpanData) *tracepb.Span {
	traceID, _ := hex.DecodeString(s.TraceID)
	spanID, _ := hex.DecodeString(s.SpanID)

	span := &tracepb.Span{
		TraceId:           traceID,
		SpanId:            spanID,
		Name:              s.Name,
		Kind:              toProtoSpanKind(s.Kind),
		StartTimeUnixNano: uint64(s.StartTime.UnixNano()),
		EndTimeUnixNano:   uint64(s.EndTime.UnixNano()),
		Status:            toProtoStatus(s),
		Attributes:        toProtoAttributes(s),
	}
	if s.ParentSpanID != "" {
		span.ParentSpanId, _ = hex.DecodeString(s.ParentSpanID)
	}
	return span
}

func toProtoSpanKind(k SpanKind) tracepb.Span_SpanKind {
	switch k {
	case SpanKindServer:
		return tracepb.Span_SPAN_KIND_SERVER
	case SpanKindClient:
		return tracepb.Span_SPAN_KIND_CLIENT
	default:
		return tracepb.Span_SPAN_KIND_UNSPECIFIED
	}
}

func toProtoStatus(s SpanData) *tracepb.Status {
	if !s.Failed() {
		return &tracepb.Status{Code: tracepb.Status_STATUS_CODE_OK}
	}
	return &tracepb.Status{Code: tracepb.Status_STATUS_CODE_ERROR, Message: s.Attributes[AttrError]}
}

// toProtoAttributes emits the span attributes sorted by key. When the span
// has a StatusCode, http.status_code is sent as an integer.
func toProtoAttributes(s SpanData) []*commonpb.KeyValue {
	kvs := make([]*commonpb.KeyValue, 0, len(s.Attributes)+1)
	for _, k := range slices.Sorted(maps.Keys(s.Attributes)) {
		if k == attrStatusCode && s.StatusCode > 0 {
			continue
		}
		kvs = append(kvs, stringAttr(k, s.Attributes[k]))
	}
	if s.StatusCode > 0 {
		kvs = append(kvs, &commonpb.KeyValue{
			Key:   attrStatusCode,
			Value: &commonpb.AnyValue{Value: &commonpb.AnyValue_IntValue{IntValue: int64(s.StatusCode)}},
		})
	}
	if len(kvs) == 0 {
		return nil
	}
	return kvs
}

func stringAttr(key, value string) *commonpb.KeyValue {
	return &commonpb.KeyValue{
		Key:   key,
		Value: &commonpb.AnyValue{Value: &commonpb.AnyValue_StringValue{StringValue: value}},
	}
}
