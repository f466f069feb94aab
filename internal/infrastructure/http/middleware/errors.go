package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/apascualco/campusgate/internal/domain"
)

// ErrorResponse is the envelope every failed request is answered with.
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Timestamp  string `json:"timestamp"`
	Path       string `json:"path"`
	Error      string `json:"error"`
}

func NewErrorResponse(c *gin.Context, status int, message string) ErrorResponse {
	return ErrorResponse{
		StatusCode: status,
		Timestamp:  time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
		Path:       c.Request.URL.RequestURI(),
		Error:      message,
	}
}

// ErrorEnvelope renders the last error attached with c.Error, unless the
// handler already wrote a response.
func ErrorEnvelope() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status := domain.HTTPStatus(err)

		requestID, _ := c.Get(ContextKeyRequestID)
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"request_id", requestID,
			"error", err,
		}
		if status >= 500 {
			slog.Error("request failed", attrs...)
		} else {
			slog.Debug("request failed", attrs...)
		}

		c.JSON(status, NewErrorResponse(c, status, domain.PublicMessage(err)))
	}
}

func NoRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		_ = c.Error(domain.ErrRouteNotFound)
	}
}

func NoMethod() gin.HandlerFunc {
	return func(c *gin.Context) {
		_ = c.Error(domain.ErrMethodNotAllowed)
	}
}
