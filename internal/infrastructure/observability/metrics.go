package observability

type Counter interface {
	Incr(name string, tags map[string]string)
	Add(name string, value float64, tags map[string]string)
}

type Gauge interface {
	Set(name string, value float64, tags map[string]string)
	Inc(name string, tags map[string]string)
	Dec(name string, tags map[string]string)
}

type Histogram interface {
	Observe(name string, value float64, tags map[string]string)
}

type Metrics interface {
	Counter
	Gauge
	Histogram
}

const (
	MetricHTTPRequests       = "http_requests_total"
	MetricHTTPDuration       = "http_request_duration_seconds"
	MetricHTTPInFlight       = "http_inflight_requests"
	MetricDownstreamRequests = "downstream_requests_total"
	MetricDownstreamDuration = "downstream_request_duration_seconds"
	MetricRateLimited        = "ratelimit_rejected_total"
	MetricTraceSpans         = "trace_spans_total"
)
