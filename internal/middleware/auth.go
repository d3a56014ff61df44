// Principal resolution classifies the bearer token and attaches a
// domain.Principal to the request context. It never decides whether a
// handler accepts that principal kind — that is each handler's own
// authorization check (see RequirePrincipal).
package middleware

import (
	"strings"

	"github.com/faiscadev/flaglite/internal/apperr"
	"github.com/faiscadev/flaglite/internal/auth"
	"github.com/faiscadev/flaglite/internal/domain"
	"github.com/gin-gonic/gin"
)

const PrincipalKey = "principal"

func extractBearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	return strings.TrimPrefix(header, prefix), true
}

// Authenticate resolves a principal for every request and rejects any
// request without a recognizable token. Handlers that are genuinely
// public (currently /health, /v1/auth/signup and /v1/auth/login) must not
// register this middleware.
func Authenticate(storage domain.Storage, jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := extractBearerToken(c)
		if !ok {
			RespondError(c, apperr.Unauthorized("missing or malformed authorization header"))
			return
		}

		principal, err := resolvePrincipal(c, storage, jwtService, token)
		if err != nil {
			RespondError(c, apperr.Unauthorized("invalid or expired token"))
			return
		}

		c.Set(PrincipalKey, principal)
		c.Next()
	}
}

func resolvePrincipal(c *gin.Context, storage domain.Storage, jwtService *auth.JWTService, token string) (domain.Principal, error) {
	switch auth.ClassifyToken(token) {
	case domain.PrincipalProjectKey:
		key, err := storage.FindApiKeyByHash(c.Request.Context(), auth.HashApiKey(token))
		if err != nil || key.Kind != domain.ApiKeyKindProject {
			return domain.Principal{}, auth.ErrInvalidToken
		}
		return domain.Principal{Kind: domain.PrincipalProjectKey, ProjectID: key.ProjectID}, nil

	case domain.PrincipalEnvKey:
		key, err := storage.FindApiKeyByHash(c.Request.Context(), auth.HashApiKey(token))
		if err != nil || key.Kind != domain.ApiKeyKindEnvironment || key.EnvironmentID == nil {
			return domain.Principal{}, auth.ErrInvalidToken
		}
		return domain.Principal{Kind: domain.PrincipalEnvKey, ProjectID: key.ProjectID, EnvironmentID: *key.EnvironmentID}, nil

	default:
		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			return domain.Principal{}, err
		}
		return domain.Principal{Kind: domain.PrincipalUser, UserID: claims.UserID}, nil
	}
}

// GetPrincipal reads the principal a prior Authenticate call attached.
func GetPrincipal(c *gin.Context) domain.Principal {
	v, _ := c.Get(PrincipalKey)
	p, _ := v.(domain.Principal)
	return p
}

// RequirePrincipal is each handler's authorization check: the principal
// must be one of kinds or the request is rejected with 403 Forbidden.
func RequirePrincipal(kinds ...domain.PrincipalKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := GetPrincipal(c)
		for _, k := range kinds {
			if p.Kind == k {
				c.Next()
				return
			}
		}
		RespondError(c, apperr.Forbidden("principal not permitted for this operation"))
	}
}
