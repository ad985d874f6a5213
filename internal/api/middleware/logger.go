package middleware

import (
	"time"

	"tiendabot/internal/logger"

	"github.com/gin-gonic/gin"
)

// Logger writes one line per request through the application logger, so HTTP
// traffic lands in the same leveled stream as everything else.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path += "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		line := log.Info
		if status >= 500 {
			line = log.Error
		} else if status >= 400 {
			line = log.Warn
		}
		line("%s %s %d %s %s", c.Request.Method, path, status, time.Since(start), c.ClientIP())
	}
}
