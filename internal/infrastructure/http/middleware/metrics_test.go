package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/apascualco/campusgate/internal/infrastructure/observability"
)

func TestMetrics_LabelsByRouteTemplate(t *testing.T) {
	prom := observability.NewPrometheus()

	router := gin.New()
	router.Use(Metrics(prom), ErrorEnvelope())
	router.NoRoute(NoRoute())
	router.GET("/projects/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", gin.WrapH(prom.Handler()))

	for _, path := range []string{"/projects/1", "/projects/2", "/nowhere"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	out := w.Body.String()

	assert.Contains(t, out, `campusgate_http_requests_total{method="GET",route="/projects/:id",status="200"} 2`)
	assert.Contains(t, out, `campusgate_http_requests_total{method="GET",route="unmatched",status="404"} 1`)
	assert.Contains(t, out, "campusgate_http_inflight_requests 0")
	assert.False(t, strings.Contains(out, `route="/metrics"`))
}
