package forward

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/apascualco/campusgate/internal/domain"
	"github.com/apascualco/campusgate/internal/infrastructure/observability"
	"github.com/apascualco/campusgate/internal/infrastructure/tracing"
)

var hopByHopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailers",
	"Transfer-Encoding",
	"Upgrade",
}

// PathFunc computes the backend path for an inbound request.
type PathFunc func(c *gin.Context) (string, error)

// StreamProxy relays requests whose bodies are not JSON (multipart uploads,
// file downloads) to a backend without buffering them.
type StreamProxy struct {
	resolver  Resolver
	transport http.RoundTripper
	metrics   observability.Metrics
	exporter  tracing.SpanExporter
}

// NewStreamProxy builds a proxy; nil transport, metrics or exporter fall back
// to the default transport and no-op sinks.
func NewStreamProxy(resolver Resolver, transport http.RoundTripper, metrics observability.Metrics, exporter tracing.SpanExporter) *StreamProxy {
	if transport == nil {
		transport = http.DefaultTransport
	}
	if metrics == nil {
		metrics = observability.Noop{}
	}
	if exporter == nil {
		exporter = &tracing.NoopExporter{}
	}
	return &StreamProxy{resolver: resolver, transport: transport, metrics: metrics, exporter: exporter}
}

func (p *StreamProxy) Handle(service domain.ServiceName, path PathFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		base, err := p.resolver.BaseURLOf(service)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		targetPath, err := path(c)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		target, err := url.Parse(base)
		if err != nil {
			_ = c.Error(&domain.ConfigurationError{Service: service})
			c.Abort()
			return
		}

		call := outboundCall{
			service: service,
			method:  c.Request.Method,
			url:     base + targetPath,
			start:   time.Now(),
		}
		proxy := &httputil.ReverseProxy{
			Transport: p.transport,
			Director: func(req *http.Request) {
				req.URL.Scheme = target.Scheme
				req.URL.Host = target.Host
				req.Host = target.Host
				req.URL.Path = target.Path + targetPath
				req.URL.RawPath = ""
				req.URL.RawQuery = c.Request.URL.RawQuery

				for _, h := range hopByHopHeaders {
					req.Header.Del(h)
				}

				if c.Request.Host != "" {
					req.Header.Set("X-Forwarded-Host", c.Request.Host)
				}

				proto := "http"
				if c.Request.TLS != nil {
					proto = "https"
				}
				if forwardedProto := c.GetHeader("X-Forwarded-Proto"); forwardedProto != "" {
					proto = forwardedProto
				}
				req.Header.Set("X-Forwarded-Proto", proto)
				req.Header.Set("X-Forwarded-Service", string(service))

				call.span = propagate(req.Context(), req.Header)
			},
			ModifyResponse: func(resp *http.Response) error {
				call.finish(c.Request.Context(), p.metrics, p.exporter, resp.StatusCode, nil)
				return nil
			},
			ErrorHandler: func(_ http.ResponseWriter, req *http.Request, err error) {
				call.finish(c.Request.Context(), p.metrics, p.exporter, 0, err)
				slog.Warn("stream forward failed",
					"service", service,
					"url", req.URL.String(),
					"error", err,
				)
				_ = c.Error(&domain.NetworkError{
					Service: service,
					URL:     call.url,
					Err:     err,
				})
				c.Abort()
			},
		}

		proxy.ServeHTTP(c.Writer, c.Request)
	}
}

// ParamPath builds a backend path from a format and integer path params, e.g.
// ParamPath("/deliverables/%d/submit", "id").
func ParamPath(format string, params ...string) PathFunc {
	return func(c *gin.Context) (string, error) {
		args := make([]any, 0, len(params))
		for _, name := range params {
			v, err := domain.ParseID(name, c.Param(name))
			if err != nil {
				return "", err
			}
			args = append(args, v)
		}
		return fmt.Sprintf(format, args...), nil
	}
}

func StaticPath(path string) PathFunc {
	return func(*gin.Context) (string, error) { return path, nil }
}
