package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"taskhub/pkg/logger"
)

// Health reports liveness and whether the store answers a ping.
func (h *Handler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	if err := h.deps.Store.Ping(ctx); err != nil {
		logger.SystemLogger.Warn("Health check failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"message": "Store unavailable",
			"success": false,
			"status":  fiber.StatusServiceUnavailable,
			"data":    fiber.Map{"store": "down"},
		})
	}
	return respond(c, fiber.StatusOK, "OK", fiber.Map{"store": "up"})
}
