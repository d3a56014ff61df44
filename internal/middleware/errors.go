package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/faiscadev/flaglite/internal/apperr"
	"github.com/gin-gonic/gin"
)

// ErrorBody is the response shape for every non-2xx response.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// RespondError writes the error body for e and logs backend errors (kind
// internal) with full detail and the request id, since the body itself
// never carries backend detail.
func RespondError(c *gin.Context, err error) {
	e := apperr.As(err)

	if e.Code == apperr.CodeInternal {
		slog.Error("request failed", "request_id", c.GetString(RequestIDKey), "error", e.Error())
	}

	c.AbortWithStatusJSON(e.Code.StatusCode(), ErrorBody{Error: string(e.Code), Message: e.Message})
}

// Recovery converts a panic into the same structured internal error body
// the rest of the surface uses, instead of gin's default plaintext dump,
// logging the stack before responding.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("panic recovered", "request_id", c.GetString(RequestIDKey), "panic", r, "stack", string(debug.Stack()))
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorBody{
					Error:   string(apperr.CodeInternal),
					Message: "internal server error",
				})
			}
		}()
		c.Next()
	}
}
