package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

func HealthHandler(startTime time.Time, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{
			Status:  "healthy",
			Version: version,
			Uptime:  time.Since(startTime).Truncate(time.Second).String(),
		})
	}
}

// Checker is a dependency the gateway cannot serve without.
type Checker interface {
	Check(ctx context.Context) error
}

type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// ReadyHandler reports 503 while any named checker fails. With no checkers
// the gateway is always ready.
func ReadyHandler(checkers map[string]Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := ReadyResponse{Status: "ready"}
		code := http.StatusOK

		for name, checker := range checkers {
			if resp.Checks == nil {
				resp.Checks = make(map[string]string, len(checkers))
			}
			if err := checker.Check(c.Request.Context()); err != nil {
				slog.Warn("readiness check failed", "check", name, "error", err)
				resp.Checks[name] = "down"
				resp.Status = "not_ready"
				code = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "up"
		}

		c.JSON(code, resp)
	}
}
