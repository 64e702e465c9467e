// Package routes wires repositories, services and handlers onto the fiber app.
package routes

import (
	"context"

	"montoit/internal/config"
	"montoit/internal/handlers"
	"montoit/internal/middleware"
	"montoit/internal/repositories"
	"montoit/internal/services/notification"
	"montoit/internal/services/verification"
	"montoit/internal/smileid"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	var recordCache repositories.RecordCache
	if repositories.CacheService != nil {
		recordCache = repositories.CacheService
	}
	records := repositories.NewVerificationRepository(db, recordCache)
	profiles := repositories.NewProfileRepository(db)

	// Initialize services
	verificationService := verification.NewService(
		cfg.SmileID,
		records,
		profiles,
		smileid.NewClient(cfg.SmileID),
		smileid.NewSigner(cfg.SmileID.APIKey),
		notification.NewService(cfg.SMTP),
	)

	// Initialize handlers
	verificationHandler := handlers.NewVerificationHandler(verificationService)
	healthHandler := newHealthHandler(db)
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret)

	// Public endpoints
	app.Get("/health", healthHandler.Check)
	app.Get("/health/cache", healthHandler.CacheStats)

	// Vendor endpoints, authenticated by body signature
	app.Post("/smile-id-callback", verificationHandler.Callback)
	app.Get("/smile-id-callback", verificationHandler.CallbackHealth)

	// Client endpoints
	app.Post("/smile-id-submit", authMiddleware.Handler, verificationHandler.Submit)
	app.Get("/smile-id-status", authMiddleware.Handler, verificationHandler.Status)
	app.Post("/smile-id-token", authMiddleware.Handler, verificationHandler.Token)
	app.Post("/smile-id-web-token", authMiddleware.Handler, verificationHandler.WebToken)
}

func newHealthHandler(db *gorm.DB) *handlers.HealthHandler {
	checks := map[string]handlers.HealthCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}

	var stats func() *redis.PoolStats
	if repositories.CacheService != nil {
		checks["redis"] = repositories.CacheService.HealthCheck
		stats = repositories.CacheService.GetStats
	}

	return handlers.NewHealthHandler(checks, stats)
}
