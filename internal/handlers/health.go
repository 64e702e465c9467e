package handlers

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// HealthCheck checks one dependency.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]HealthCheck
	stats  func() *redis.PoolStats
}

// NewHealthHandler takes named dependency checks and an optional Redis pool
// stats source.
func NewHealthHandler(checks map[string]HealthCheck, stats func() *redis.PoolStats) *HealthHandler {
	return &HealthHandler{checks: checks, stats: stats}
}

// Check handles GET /health.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := "ok"
	code := fiber.StatusOK
	services := fiber.Map{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			log.Printf("health check %s failed: %v", name, err)
			services[name] = "disconnected"
			status = "degraded"
			code = fiber.StatusServiceUnavailable
			continue
		}
		services[name] = "connected"
	}

	return c.Status(code).JSON(fiber.Map{
		"status":   status,
		"version":  "1.0.0",
		"services": services,
	})
}

// CacheStats handles GET /health/cache.
func (h *HealthHandler) CacheStats(c *fiber.Ctx) error {
	if h.stats == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "cache not configured"})
	}
	poolStats := h.stats()

	return c.JSON(fiber.Map{
		"pool_stats": fiber.Map{
			"hits":        poolStats.Hits,
			"misses":      poolStats.Misses,
			"timeouts":    poolStats.Timeouts,
			"total_conns": poolStats.TotalConns,
			"idle_conns":  poolStats.IdleConns,
			"stale_conns": poolStats.StaleConns,
		},
	})
}
