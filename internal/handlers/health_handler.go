package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/trevocrm/crm-automation-be/internal/shared/database"
)

// HealthHandler reports service liveness
type HealthHandler struct {
	db *database.DB
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	if err := h.db.Ping(); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unhealthy",
			"error":  "database unreachable",
		})
	}

	return c.JSON(fiber.Map{
		"status":  "healthy",
		"service": "crm-automation-be",
	})
}
