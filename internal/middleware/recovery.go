package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/pageshell/internal/domain"
)

// Recovery returns a gin middleware that turns a panic into a 500 response.
// The panic value and stack are logged through logger. Browsers get the
// errors/500.html page, everyone else the JSON envelope:
//
//	{"code": 500, "message": "internal error", "data": null}
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(c *gin.Context) {
		defer func() {
			err := recover()
			if err == nil {
				return
			}
			if err == http.ErrAbortHandler {
				panic(err)
			}

			logger.ErrorContext(c.Request.Context(), "panic recovered",
				slog.Any("panic", err),
				slog.String("method", c.Request.Method),
				slog.String("path", c.Request.URL.Path),
				slog.String("stack", string(debug.Stack())),
			)

			if c.Writer.Written() {
				c.Abort()
				return
			}
			AbortWithAppError(c, domain.ErrInternal)
		}()
		c.Next()
	}
}
