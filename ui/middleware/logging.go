package middleware

import (
	"time"

	"rxprev/internal"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs one line per request through the application logger
func RequestLogger(logger *internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		elapsed := float64(time.Since(start).Nanoseconds()) / 1e6
		switch {
		case status >= 500:
			logger.Error("[HTTP] %s %s -> %d in %.2fms: %s", c.Request.Method, c.Request.URL.Path, status, elapsed, c.Errors.String())
		case status >= 400:
			logger.Warn("[HTTP] %s %s -> %d in %.2fms", c.Request.Method, c.Request.URL.Path, status, elapsed)
		default:
			logger.Info("[HTTP] %s %s -> %d in %.2fms", c.Request.Method, c.Request.URL.Path, status, elapsed)
		}
	}
}
