package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/trevocrm/crm-automation-be/internal/core/automation"
	"github.com/trevocrm/crm-automation-be/internal/services"
)

// WebhookHandler exposes the webhook registry and manual trigger on a
// single route, multiplexed by HTTP method plus the ?action= query param.
type WebhookHandler struct {
	webhookService *services.WebhookService
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(webhookService *services.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhookService: webhookService}
}

type registerWebhookRequest struct {
	URL    string   `json:"url"`
	Events []string `json:"events"`
	Secret string   `json:"secret"`
}

type triggerWebhookRequest struct {
	Event string                 `json:"event"`
	Data  map[string]interface{} `json:"data"`
}

type deleteWebhookRequest struct {
	WebhookID string `json:"webhook_id"`
}

// Handle routes webhook requests by method and action:
//
//	POST   ?action=register  register a subscription
//	POST   ?action=trigger   fan an event out to subscribers
//	GET                      list active subscriptions
//	GET    ?action=logs      list delivery outcomes for one subscription
//	DELETE                   deactivate a subscription
func (h *WebhookHandler) Handle(c *fiber.Ctx) error {
	switch c.Method() {
	case fiber.MethodPost:
		if c.Query("action") == "trigger" {
			return h.trigger(c)
		}
		return h.register(c)
	case fiber.MethodGet:
		if c.Query("action") == "logs" {
			return h.deliveryLogs(c)
		}
		return h.list(c)
	case fiber.MethodDelete:
		return h.delete(c)
	default:
		return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{
			"error": "method not allowed",
		})
	}
}

func (h *WebhookHandler) register(c *fiber.Ctx) error {
	var req registerWebhookRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	sub, err := h.webhookService.Register(c.Context(), req.URL, req.Events, req.Secret)
	if err != nil {
		if automation.IsValidationError(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		log.Printf("❌ Failed to register webhook: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to register webhook",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"webhook": sub,
	})
}

func (h *WebhookHandler) list(c *fiber.Ctx) error {
	subs, err := h.webhookService.List(c.Context())
	if err != nil {
		log.Printf("❌ Failed to list webhooks: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to list webhooks",
		})
	}

	return c.JSON(fiber.Map{
		"webhooks": subs,
	})
}

func (h *WebhookHandler) deliveryLogs(c *fiber.Ctx) error {
	webhookID, err := uuid.Parse(c.Query("webhook_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid webhook_id format",
		})
	}

	limit := c.QueryInt("limit", 50)
	entries, err := h.webhookService.DeliveryLogs(c.Context(), webhookID, limit)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "webhook not found",
		})
	}

	return c.JSON(fiber.Map{
		"logs": entries,
	})
}

func (h *WebhookHandler) trigger(c *fiber.Ctx) error {
	var req triggerWebhookRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.Event == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "event is required",
		})
	}

	result, err := h.webhookService.Trigger(c.Context(), req.Event, req.Data)
	if err != nil {
		log.Printf("❌ Failed to trigger webhooks: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to trigger webhooks",
		})
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"triggered":  result.Triggered,
		"successful": result.Successful,
		"failed":     result.Failed,
	})
}

func (h *WebhookHandler) delete(c *fiber.Ctx) error {
	var req deleteWebhookRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	webhookID, err := uuid.Parse(req.WebhookID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid webhook_id format",
		})
	}

	if err := h.webhookService.Delete(c.Context(), webhookID); err != nil {
		log.Printf("❌ Failed to delete webhook: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to delete webhook",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}
