package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLogging emits one structured log event per request at completion:
// method, path, status, duration_ms, request_id, and the resolved
// principal kind (empty for public routes). It must be
// registered after RequestID so the id is already in the gin context. It
// reads the principal only after c.Next() returns, so a principal set by
// Authenticate on a route group registered later is still logged.
func RequestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		principal := GetPrincipal(c)

		slog.Info("request completed",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", c.GetString(RequestIDKey),
			"principal_kind", string(principal.Kind),
		)
	}
}
