package middleware

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/apascualco/campusgate/internal/domain"
	"github.com/apascualco/campusgate/internal/infrastructure/observability"
	"github.com/apascualco/campusgate/internal/infrastructure/ratelimit"
)

const rateLimitKeyPrefix = "campusgate:ratelimit"

// Limits are requests per window. Authenticated callers are counted by user id,
// anonymous ones by client IP.
type Limits struct {
	PerUser int
	PerIP   int
}

// RateLimit applies Limits to every request. A failing limiter lets the request
// through.
func RateLimit(limiter ratelimit.RateLimiter, limits Limits, metrics observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, ok := c.Get(ContextKeyUserID); ok {
			enforce(c, limiter, metrics, "user", fmt.Sprintf("%s:user:%v", rateLimitKeyPrefix, userID), limits.PerUser)
			return
		}
		enforce(c, limiter, metrics, "ip", rateLimitKeyPrefix+":ip:"+c.ClientIP(), limits.PerIP)
	}
}

// RouteRateLimit adds a budget of its own to the route it is mounted on.
func RouteRateLimit(limiter ratelimit.RateLimiter, limit int, metrics observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := "ip:" + c.ClientIP()
		if userID, ok := c.Get(ContextKeyUserID); ok {
			caller = fmt.Sprintf("user:%v", userID)
		}
		enforce(c, limiter, metrics, "route", fmt.Sprintf("%s:route:%s:%s", rateLimitKeyPrefix, c.FullPath(), caller), limit)
	}
}

func enforce(c *gin.Context, limiter ratelimit.RateLimiter, metrics observability.Metrics, scope, key string, limit int) {
	result, err := limiter.Allow(c.Request.Context(), key, limit)
	if err != nil {
		slog.Warn("rate limiter unavailable, letting request through",
			slog.String("scope", scope),
			slog.Any("error", err),
		)
		c.Next()
		return
	}

	h := c.Writer.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

	if result.Allowed {
		c.Next()
		return
	}

	h.Set("Retry-After", strconv.Itoa(retryAfterSeconds(result.ResetAt, time.Now())))
	metrics.Incr(observability.MetricRateLimited, map[string]string{"scope": scope})
	_ = c.Error(domain.ErrRateLimited)
	c.Abort()
}

// retryAfterSeconds rounds up and never answers less than one second.
func retryAfterSeconds(resetAt, now time.Time) int {
	secs := int(math.Ceil(resetAt.Sub(now).Seconds()))
	return max(secs, 1)
}
