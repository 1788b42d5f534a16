package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/trevocrm/crm-automation-be/internal/services"
)

// RunnerHandler triggers a manual worker sweep over pending events.
// The scheduled runner binary covers normal operation; this endpoint
// exists for operators and integration tests.
type RunnerHandler struct {
	workerService *services.WorkerService
	batchSize     int
}

// NewRunnerHandler creates a new runner handler
func NewRunnerHandler(workerService *services.WorkerService, batchSize int) *RunnerHandler {
	return &RunnerHandler{
		workerService: workerService,
		batchSize:     batchSize,
	}
}

// Run handles POST /automation/run
func (h *RunnerHandler) Run(c *fiber.Ctx) error {
	processed, failed, err := h.workerService.Run(c.Context(), h.batchSize)
	if err != nil {
		log.Printf("❌ Manual automation run failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "automation run failed",
		})
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"processed": processed,
		"errors":    failed,
	})
}
