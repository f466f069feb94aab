package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/apascualco/campusgate/internal/infrastructure/observability"
)

const unmatchedRoute = "unmatched"

// Metrics records request counts, latency and in-flight requests labelled by
// the route template, never the raw path.
func Metrics(m observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		m.Inc(observability.MetricHTTPInFlight, nil)
		defer m.Dec(observability.MetricHTTPInFlight, nil)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		m.Incr(observability.MetricHTTPRequests, map[string]string{
			"method": c.Request.Method,
			"route":  route,
			"status": strconv.Itoa(c.Writer.Status()),
		})
		m.Observe(observability.MetricHTTPDuration, time.Since(start).Seconds(), map[string]string{
			"method": c.Request.Method,
			"route":  route,
		})
	}
}
