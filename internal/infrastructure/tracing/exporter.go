package tracing

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/apascualco/campusgate/internal/infrastructure/config"
	"github.com/apascualco/campusgate/internal/infrastructure/observability"
)

type SpanKind uint8

const (
	SpanKindServer SpanKind = iota + 1
	SpanKindClient
)

// AttrError is set on spans whose operation failed without an HTTP status,
// such as a refused connection.
const AttrError = "error"

// SpanData is a finished span. Attributes hold string values only; the
// status code travels in StatusCode.
type SpanData struct {
	TraceID, SpanID, ParentSpanID string

	Name        string
	ServiceName string
	Kind        SpanKind

	StartTime, EndTime time.Time
	StatusCode         int
	Attributes         map[string]string
}

func (s SpanData) Duration() time.Duration { return s.EndTime.Sub(s.StartTime) }

// Failed reports transport errors and 5xx answers. A 4xx is the caller's
// fault and does not fail the span.
func (s SpanData) Failed() bool {
	_, transport := s.Attributes[AttrError]
	return transport || s.StatusCode >= 500
}

type SpanExporter interface {
	Export(ctx context.Context, span SpanData)
	Shutdown(ctx context.Context) error
}

type NoopExporter struct{}

func (*NoopExporter) Export(context.Context, SpanData) {}

func (*NoopExporter) Shutdown(context.Context) error { return nil }

// LogExporter writes each span as a debug line. Meant for local runs without
// a collector.
type LogExporter struct {
	logger *slog.Logger
}

func NewLogExporter(logger *slog.Logger) *LogExporter {
	return &LogExporter{logger: logger}
}

func (e *LogExporter) Export(ctx context.Context, s SpanData) {
	e.logger.LogAttrs(ctx, slog.LevelDebug, "span",
		slog.String("name", s.Name),
		slog.String("trace_id", s.TraceID),
		slog.String("span_id", s.SpanID),
		slog.String("parent_span_id", s.ParentSpanID),
		slog.Int("status", s.StatusCode),
		slog.Duration("duration", s.Duration()),
		slog.Bool("failed", s.Failed()),
	)
}

func (*LogExporter) Shutdown(context.Context) error { return nil }

// NewExporter picks the exporter named by TRACE_EXPORTER: otlp, log or noop.
// otlp without an endpoint degrades to noop.
func NewExporter(cfg *config.Config, metrics observability.Metrics) SpanExporter {
	switch strings.ToLower(cfg.TraceExporter) {
	case "otlp":
		if cfg.TraceOTLPEndpoint == "" {
			slog.Warn("otlp trace exporter has no endpoint, spans are discarded")
			return &NoopExporter{}
		}
		slog.Info("exporting traces over otlp",
			slog.String("endpoint", cfg.TraceOTLPEndpoint),
			slog.Int("batch_size", cfg.TraceBatchSize),
			slog.Duration("flush_interval", cfg.TraceFlushInterval),
		)
		return NewOTLPExporter(OTLPConfig{
			Endpoint:      cfg.TraceOTLPEndpoint,
			Headers:       cfg.TraceOTLPHeaders,
			ServiceName:   cfg.TraceServiceName,
			Version:       cfg.Version,
			Environment:   cfg.Env,
			BatchSize:     cfg.TraceBatchSize,
			FlushInterval: cfg.TraceFlushInterval,
			Metrics:       metrics,
		})
	case "log":
		return NewLogExporter(slog.Default().With(slog.String("component", "tracing")))
	default:
		return &NoopExporter{}
	}
}
