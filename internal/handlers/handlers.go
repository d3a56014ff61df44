// Package handlers implements the HTTP surface: request decoding,
// invoking the matching domain service, and response shaping.
package handlers

import (
	"github.com/faiscadev/flaglite/internal/apperr"
	"github.com/faiscadev/flaglite/internal/domain"
	"github.com/faiscadev/flaglite/internal/middleware"
	"github.com/gin-gonic/gin"
)

const timeFormat = "2006-01-02T15:04:05Z07:00"

// requestContext builds the domain.RequestContext a handler passes into
// its service call, from state earlier middleware already attached.
func requestContext(c *gin.Context) domain.RequestContext {
	return domain.RequestContext{
		Principal: middleware.GetPrincipal(c),
		RequestID: c.GetString(middleware.RequestIDKey),
	}
}

func respondBadRequest(c *gin.Context, err error) {
	middleware.RespondError(c, apperr.BadRequest(err.Error()))
}
