package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/apascualco/campusgate/internal/domain"
)

// Recovery turns a handler panic into a 500 envelope. http.ErrAbortHandler is
// re-raised so net/http can drop the connection.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}

			logger.LogAttrs(c.Request.Context(), slog.LevelError, "panic recovered",
				slog.String("panic", fmt.Sprint(rec)),
				slog.String("method", c.Request.Method),
				slog.String("path", c.Request.URL.Path),
				slog.String("request_id", c.GetString(ContextKeyRequestID)),
				slog.String("stack", string(debug.Stack())),
			)

			err := fmt.Errorf("panic: %v", rec)
			_ = c.Error(err)
			if c.Writer.Written() {
				c.Abort()
				return
			}
			status := domain.HTTPStatus(err)
			c.AbortWithStatusJSON(status, NewErrorResponse(c, status, domain.PublicMessage(err)))
		}()
		c.Next()
	}
}
