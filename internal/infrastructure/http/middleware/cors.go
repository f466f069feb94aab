package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/apascualco/campusgate/internal/infrastructure/tracing"
)

const preflightMaxAge = "86400"

// exposedHeaders are the gateway headers browsers may read.
var exposedHeaders = strings.Join([]string{
	tracing.HeaderRequestID,
	"X-RateLimit-Limit",
	"X-RateLimit-Remaining",
	"X-RateLimit-Reset",
}, ",")

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type corsPolicy struct {
	anyOrigin bool
	origins   []string
	methods   string
	headers   string
}

func (p corsPolicy) allows(origin string) bool {
	return p.anyOrigin || slices.Contains(p.origins, origin)
}

func (p corsPolicy) decorate(h http.Header, origin string, preflight bool) {
	h.Set("Access-Control-Allow-Origin", origin)
	h.Set("Access-Control-Allow-Credentials", "true")
	h.Set("Access-Control-Expose-Headers", exposedHeaders)
	if preflight {
		h.Set("Access-Control-Allow-Methods", p.methods)
		h.Set("Access-Control-Allow-Headers", p.headers)
		h.Set("Access-Control-Max-Age", preflightMaxAge)
	}
}

// CORS answers preflight requests itself and decorates every other response.
// A wildcard origin is never combined with credentials: with "*" configured the
// caller's origin is echoed back instead.
func CORS(cfg CORSConfig) gin.HandlerFunc {
	policy := corsPolicy{
		anyOrigin: slices.Contains(cfg.AllowedOrigins, "*"),
		origins:   cfg.AllowedOrigins,
		methods:   strings.Join(cfg.AllowedMethods, ","),
		headers:   strings.Join(cfg.AllowedHeaders, ","),
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			return
		}

		preflight := c.Request.Method == http.MethodOptions &&
			c.GetHeader("Access-Control-Request-Method") != ""
		c.Writer.Header().Add("Vary", "Origin")

		switch {
		case policy.allows(origin):
			policy.decorate(c.Writer.Header(), origin, preflight)
			if preflight {
				c.AbortWithStatus(http.StatusNoContent)
			}
		case preflight:
			c.AbortWithStatus(http.StatusForbidden)
		}
	}
}
