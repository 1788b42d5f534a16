package handlers

import (
	"encoding/json"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/trevocrm/crm-automation-be/internal/models"
	"github.com/trevocrm/crm-automation-be/internal/repositories"
)

// EventHandler enqueues automation events. The main CRM backend calls this
// when an entity changes state; the worker drains the queue asynchronously.
type EventHandler struct {
	eventRepo repositories.EventRepo
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventRepo repositories.EventRepo) *EventHandler {
	return &EventHandler{eventRepo: eventRepo}
}

type enqueueEventRequest struct {
	TenantID   string                 `json:"tenant_id"`
	EventType  string                 `json:"event_type"`
	EntityType string                 `json:"entity_type"`
	EntityID   string                 `json:"entity_id"`
	EventData  map[string]interface{} `json:"event_data"`
}

// Enqueue handles POST /automation/events
func (h *EventHandler) Enqueue(c *fiber.Ctx) error {
	var req enqueueEventRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid tenant_id format",
		})
	}
	entityID, err := uuid.Parse(req.EntityID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid entity_id format",
		})
	}
	if req.EventType == "" || req.EntityType == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "event_type and entity_type are required",
		})
	}

	data := req.EventData
	if data == nil {
		data = map[string]interface{}{}
	}
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid event_data",
		})
	}

	event := &models.AutomationEvent{
		TenantID:   tenantID,
		EventType:  req.EventType,
		EntityType: req.EntityType,
		EntityID:   entityID,
		EventData:  datatypes.JSON(dataJSON),
		Status:     models.EventStatusPending,
	}

	if err := h.eventRepo.Create(c.Context(), event); err != nil {
		log.Printf("❌ Failed to enqueue automation event: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to enqueue event",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"event":   event,
	})
}
