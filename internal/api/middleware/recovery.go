package middleware

import (
	"net/http"
	"runtime/debug"

	"tiendabot/internal/logger"

	"github.com/gin-gonic/gin"
)

func Recovery(logger *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		if gin.IsDebugging() {
			logger.Error("[Recovery] panic recovered: %s %s: %v\n%s",
				c.Request.Method, c.Request.URL.Path, recovered, string(debug.Stack()))
		} else {
			logger.Error("[Recovery] panic recovered: %v", recovered)
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	})
}
