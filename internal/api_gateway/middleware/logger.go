package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger emits one structured log line per request after the handler chain
// finishes. Errors recorded on the gin context are logged at warn level.
func Logger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		l := logger
		if id := GetCorrelationID(c); id != "" {
			l = l.With("correlation_id", id)
		}

		attrs := []any{
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
		}

		if len(c.Errors) > 0 {
			l.Warn("HTTP request", append(attrs, "errors", c.Errors.String())...)
			return
		}
		l.Info("HTTP request", attrs...)
	}
}
