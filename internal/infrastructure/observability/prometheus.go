package observability

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "campusgate"

// Prometheus serves the gateway's metrics on its own registry. Names that
// were not declared here are ignored.
type Prometheus struct {
	registry   *prometheus.Registry
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
}

func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry:   prometheus.NewRegistry(),
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}

	p.counter(MetricHTTPRequests, "Total number of HTTP requests handled.", "method", "route", "status")
	p.histogram(MetricHTTPDuration, "Duration of HTTP requests.",
		prometheus.ExponentialBuckets(0.005, 2, 12), "method", "route")
	p.gauge(MetricHTTPInFlight, "Current number of in-flight HTTP requests.")
	p.counter(MetricDownstreamRequests, "Total number of calls to backend services.", "service", "method", "status")
	p.histogram(MetricDownstreamDuration, "Duration of calls to backend services.",
		prometheus.ExponentialBuckets(0.005, 2, 12), "service", "method")
	p.counter(MetricRateLimited, "Requests rejected by the rate limiter.", "scope")
	p.counter(MetricTraceSpans, "Spans handed to the trace exporter, by outcome.", "outcome")

	p.registry.MustRegister(
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	return p
}

func (p *Prometheus) counter(name, help string, labels ...string) {
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help}, labels)
	p.registry.MustRegister(vec)
	p.counters[name] = vec
}

func (p *Prometheus) gauge(name, help string, labels ...string) {
	vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help}, labels)
	p.registry.MustRegister(vec)
	p.gauges[name] = vec
}

func (p *Prometheus) histogram(name, help string, buckets []float64, labels ...string) {
	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}, labels)
	p.registry.MustRegister(vec)
	p.histograms[name] = vec
}

// Handler exposes the registry for scraping.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

func (p *Prometheus) Incr(name string, tags map[string]string) {
	p.Add(name, 1, tags)
}

func (p *Prometheus) Add(name string, value float64, tags map[string]string) {
	vec, ok := p.counters[name]
	if !ok {
		return
	}
	c, err := vec.GetMetricWith(prometheus.Labels(tags))
	if err != nil {
		slog.Debug("metrics: bad labels", "metric", name, "error", err)
		return
	}
	c.Add(value)
}

func (p *Prometheus) Set(name string, value float64, tags map[string]string) {
	if g := p.gaugeWith(name, tags); g != nil {
		g.Set(value)
	}
}

func (p *Prometheus) Inc(name string, tags map[string]string) {
	if g := p.gaugeWith(name, tags); g != nil {
		g.Inc()
	}
}

func (p *Prometheus) Dec(name string, tags map[string]string) {
	if g := p.gaugeWith(name, tags); g != nil {
		g.Dec()
	}
}

func (p *Prometheus) gaugeWith(name string, tags map[string]string) prometheus.Gauge {
	vec, ok := p.gauges[name]
	if !ok {
		return nil
	}
	g, err := vec.GetMetricWith(prometheus.Labels(tags))
	if err != nil {
		slog.Debug("metrics: bad labels", "metric", name, "error", err)
		return nil
	}
	return g
}

func (p *Prometheus) Observe(name string, value float64, tags map[string]string) {
	vec, ok := p.histograms[name]
	if !ok {
		return
	}
	h, err := vec.GetMetricWith(prometheus.Labels(tags))
	if err != nil {
		slog.Debug("metrics: bad labels", "metric", name, "error", err)
		return
	}
	h.Observe(value)
}
