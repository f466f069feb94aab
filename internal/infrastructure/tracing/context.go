package tracing

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

const (
	HeaderTraceparent = "Traceparent"
	HeaderTracestate  = "Tracestate"
	HeaderRequestID   = "X-Request-ID"
)

var traceparentRegex = regexp.MustCompile(`^00-([0-9a-f]{32})-([0-9a-f]{16})-([0-9a-f]{2})$`)

var (
	zeroTraceID = strings.Repeat("0", 32)
	zeroSpanID  = strings.Repeat("0", 16)
)

// SpanContext identifies the active span of a request.
type SpanContext struct {
	TraceID string
	SpanID  string
	Flags   string
	State   string
}

func (sc SpanContext) Valid() bool {
	return sc.TraceID != "" && sc.SpanID != ""
}

func (sc SpanContext) Traceparent() string {
	flags := sc.Flags
	if flags == "" {
		flags = "01"
	}
	return fmt.Sprintf("00-%s-%s-%s", sc.TraceID, sc.SpanID, flags)
}

// ParseTraceparent reads a version 00 W3C traceparent header. All-zero ids are
// rejected.
func ParseTraceparent(header string) (SpanContext, bool) {
	matches := traceparentRegex.FindStringSubmatch(header)
	if len(matches) != 4 {
		return SpanContext{}, false
	}
	if matches[1] == zeroTraceID || matches[2] == zeroSpanID {
		return SpanContext{}, false
	}
	return SpanContext{TraceID: matches[1], SpanID: matches[2], Flags: matches[3]}, true
}

type spanKey struct{}

type requestIDKey struct{}

func ContextWithSpan(ctx context.Context, sc SpanContext) context.Context {
	return context.WithValue(ctx, spanKey{}, sc)
}

func SpanFromContext(ctx context.Context) (SpanContext, bool) {
	sc, ok := ctx.Value(spanKey{}).(SpanContext)
	return sc, ok && sc.Valid()
}

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func NewTraceID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func NewSpanID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
