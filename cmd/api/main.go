// Package main is the entry point for the FlagLite core API.
package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/faiscadev/flaglite/internal/auth"
	"github.com/faiscadev/flaglite/internal/config"
	"github.com/faiscadev/flaglite/internal/handlers"
	"github.com/faiscadev/flaglite/internal/logging"
	"github.com/faiscadev/flaglite/internal/middleware"
	"github.com/faiscadev/flaglite/internal/routes"
	"github.com/faiscadev/flaglite/internal/service"
	"github.com/faiscadev/flaglite/internal/storage"
	_ "github.com/faiscadev/flaglite/internal/storage/postgres"
	_ "github.com/faiscadev/flaglite/internal/storage/sqlite"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration. A bad config (short JWT secret, unknown DSN
	// scheme) crashes the process before any listener opens.
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration: ", err)
	}

	logging.Setup(cfg.LogLevel)

	ctx := context.Background()

	// Initialize storage. The adapter is chosen from the DATABASE_URL
	// scheme; migrations run as part of Open.
	store, err := storage.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to initialize storage: ", err)
	}
	defer store.Close()

	jwtService := auth.NewJWTService(cfg.JWTSecret)
	if jwtService == nil {
		log.Fatalf("JWT_SECRET must be at least %d bytes", auth.MinJWTSecretBytes)
	}

	// Initialize services
	authService := service.NewAuthService(store, jwtService)
	projectService := service.NewProjectService(store)
	flagService := service.NewFlagService(store)
	evaluationService := service.NewEvaluationService(store)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	projectHandler := handlers.NewProjectHandler(projectService)
	flagHandler := handlers.NewFlagHandler(flagService)
	evaluationHandler := handlers.NewEvaluationHandler(evaluationService)
	healthHandler := handlers.NewHealthHandler()

	// Setup router. gin.New() rather than gin.Default() so the recovery
	// handler can be our own: panics must produce the same structured
	// internal error body as any other failure, not gin's default
	// plaintext dump.
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.RequestTimeout(cfg.RequestTimeout),
		middleware.RequestLogging(),
	)

	routes.Setup(router, store, jwtService, authHandler, projectHandler, flagHandler, evaluationHandler, healthHandler)

	slog.Info("starting flaglite", "addr", cfg.Addr())
	if err := router.Run(cfg.Addr()); err != nil {
		log.Fatal("server exited: ", err)
	}
}
