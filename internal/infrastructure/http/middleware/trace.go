package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/apascualco/campusgate/internal/infrastructure/tracing"
)

const (
	ContextKeyTraceID = "trace_id"
	ContextKeySpanID  = "span_id"
)

// Trace continues the caller's W3C trace, or starts a new one, and exports a
// server span once the request completes. The span is stored in the request
// context so forwarded calls become its children.
func Trace(exporter tracing.SpanExporter, serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		parent, continued := tracing.ParseTraceparent(c.GetHeader(tracing.HeaderTraceparent))
		span := tracing.SpanContext{TraceID: tracing.NewTraceID(), SpanID: tracing.NewSpanID(), Flags: "01"}
		if continued {
			span.TraceID = parent.TraceID
			span.Flags = parent.Flags
			span.State = c.GetHeader(tracing.HeaderTracestate)
		}

		c.Set(ContextKeyTraceID, span.TraceID)
		c.Set(ContextKeySpanID, span.SpanID)
		c.Request = c.Request.WithContext(tracing.ContextWithSpan(c.Request.Context(), span))

		c.Header(tracing.HeaderTraceparent, span.Traceparent())
		if span.State != "" {
			c.Header(tracing.HeaderTracestate, span.State)
		}

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		exporter.Export(context.Background(), tracing.SpanData{
			TraceID:      span.TraceID,
			SpanID:       span.SpanID,
			ParentSpanID: parent.SpanID,
			Name:         c.Request.Method + " " + route,
			ServiceName:  serviceName,
			Kind:         tracing.SpanKindServer,
			StartTime:    start,
			EndTime:      time.Now(),
			StatusCode:   c.Writer.Status(),
			Attributes:   serverSpanAttributes(c, route),
		})
	}
}

func serverSpanAttributes(c *gin.Context, route string) map[string]string {
	attrs := map[string]string{
		"http.method":      c.Request.Method,
		"http.url":         c.Request.URL.String(),
		"http.route":       route,
		"http.status_code": strconv.Itoa(c.Writer.Status()),
		"net.peer.ip":      c.ClientIP(),
	}
	if requestID, ok := c.Get(ContextKeyRequestID); ok {
		attrs["request.id"] = fmt.Sprint(requestID)
	}
	if userID, ok := c.Get(ContextKeyUserID); ok {
		attrs["enduser.id"] = fmt.Sprint(userID)
	}
	if len(c.Errors) > 0 {
		attrs[tracing.AttrError] = c.Errors.Last().Error()
	}
	return attrs
}
