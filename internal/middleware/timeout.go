package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestTimeout imposes a per-request deadline on the request's
// context.Context, so every downstream database call inherits it without
// each service having to know the configured duration. It must be
// registered before Authenticate and before any handler so the deadline
// covers the whole request, not just the handler body.
func RequestTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
