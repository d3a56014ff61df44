// Package routes defines HTTP routes for the FlagLite core API.
package routes

import (
	"github.com/faiscadev/flaglite/internal/auth"
	"github.com/faiscadev/flaglite/internal/domain"
	"github.com/faiscadev/flaglite/internal/handlers"
	"github.com/faiscadev/flaglite/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Setup configures all HTTP routes for the application. Only /health,
// /v1/auth/signup and /v1/auth/login are left outside the authentication
// middleware.
func Setup(
	router *gin.Engine,
	storage domain.Storage,
	jwtService *auth.JWTService,
	authHandler *handlers.AuthHandler,
	projectHandler *handlers.ProjectHandler,
	flagHandler *handlers.FlagHandler,
	evaluationHandler *handlers.EvaluationHandler,
	healthHandler *handlers.HealthHandler,
) {
	router.GET("/health", healthHandler.Check)

	public := router.Group("/v1")
	{
		public.POST("/auth/signup", authHandler.Signup)
		public.POST("/auth/login", authHandler.Login)
	}

	v1 := router.Group("/v1")
	v1.Use(middleware.Authenticate(storage, jwtService))
	{
		v1.GET("/auth/me", middleware.RequirePrincipal(domain.PrincipalUser), authHandler.Me)

		v1.GET("/projects", middleware.RequirePrincipal(domain.PrincipalUser), projectHandler.List)
		v1.POST("/projects", middleware.RequirePrincipal(domain.PrincipalUser), projectHandler.Create)
		v1.GET("/projects/:pid/environments",
			middleware.RequirePrincipal(domain.PrincipalUser, domain.PrincipalProjectKey),
			projectHandler.ListEnvironments)

		flags := v1.Group("/projects/:pid/flags")
		flags.Use(middleware.RequirePrincipal(domain.PrincipalUser, domain.PrincipalProjectKey))
		{
			flags.GET("", flagHandler.List)
			flags.POST("", flagHandler.Create)
			flags.GET("/:key", flagHandler.Get)
			flags.DELETE("/:key", flagHandler.Delete)
			flags.POST("/:key/toggle", flagHandler.Toggle)
			flags.PATCH("/:key/environments/:env", flagHandler.UpdateValue)
		}

		v1.GET("/flags/:key", middleware.RequirePrincipal(domain.PrincipalEnvKey), evaluationHandler.Evaluate)
	}
}
