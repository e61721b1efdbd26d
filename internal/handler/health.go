package handler

import (
	"context"
	"time"

	"quiz-pipeline/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Pinger is satisfied by *sqlx.DB and domain.Cache adapters.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a plain ping function.
type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

type HealthHandler struct {
	checks map[string]Pinger
}

func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Health godoc
// @Summary Liveness and dependency check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /healthz [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := fiber.StatusOK
	result := make(map[string]string, len(h.checks)+1)
	for name, check := range h.checks {
		if err := check.PingContext(ctx); err != nil {
			logger.Get().Warn("Health check failed", zap.String("dependency", name), zap.Error(err))
			result[name] = "down"
			status = fiber.StatusServiceUnavailable
			continue
		}
		result[name] = "up"
	}
	if status == fiber.StatusOK {
		result["status"] = "ok"
	} else {
		result["status"] = "degraded"
	}
	return c.Status(status).JSON(result)
}
