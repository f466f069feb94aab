package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/apascualco/campusgate/internal/infrastructure/tracing"
)

const ContextKeyRequestID = "request_id"

const maxRequestIDLength = 128

// RequestID reuses the caller's X-Request-ID when present and sane, otherwise
// assigns a new one. The id is echoed on the response and sent downstream.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(tracing.HeaderRequestID)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}

		c.Set(ContextKeyRequestID, id)
		c.Header(tracing.HeaderRequestID, id)
		c.Request = c.Request.WithContext(tracing.ContextWithRequestID(c.Request.Context(), id))

		c.Next()
	}
}
