package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trevocrm/crm-automation-be/internal/core/automation"
	"github.com/trevocrm/crm-automation-be/internal/repositories"
	"github.com/trevocrm/crm-automation-be/internal/services"
)

// RuleHandler handles automation rule management requests (consumed by the
// rule-authoring UI, not by the engine itself)
type RuleHandler struct {
	ruleService *services.RuleService
	logRepo     repositories.AutomationLogRepo
}

// NewRuleHandler creates a new rule handler
func NewRuleHandler(ruleService *services.RuleService, logRepo repositories.AutomationLogRepo) *RuleHandler {
	return &RuleHandler{ruleService: ruleService, logRepo: logRepo}
}

// CreateRule handles POST /automation/rules
func (h *RuleHandler) CreateRule(c *fiber.Ctx) error {
	tenantID, ok := tenantIDFromQuery(c)
	if !ok {
		return nil
	}

	var req automation.CreateRuleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	rule, err := h.ruleService.CreateRule(c.Context(), tenantID, req)
	if err != nil {
		if automation.IsValidationError(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		log.Printf("❌ Failed to create rule: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create rule",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"rule":    rule,
	})
}

// ListRules handles GET /automation/rules
func (h *RuleHandler) ListRules(c *fiber.Ctx) error {
	tenantID, ok := tenantIDFromQuery(c)
	if !ok {
		return nil
	}

	rules, err := h.ruleService.ListRules(c.Context(), tenantID)
	if err != nil {
		log.Printf("❌ Failed to list rules: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to list rules",
		})
	}

	return c.JSON(fiber.Map{
		"rules": rules,
	})
}

// GetRule handles GET /automation/rules/:id
func (h *RuleHandler) GetRule(c *fiber.Ctx) error {
	ruleID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid rule id",
		})
	}

	rule, err := h.ruleService.GetRule(c.Context(), ruleID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "rule not found",
			})
		}
		log.Printf("❌ Failed to get rule: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to get rule",
		})
	}

	return c.JSON(fiber.Map{
		"rule": rule,
	})
}

// UpdateRule handles PUT /automation/rules/:id
func (h *RuleHandler) UpdateRule(c *fiber.Ctx) error {
	ruleID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid rule id",
		})
	}

	var req automation.UpdateRuleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	rule, err := h.ruleService.UpdateRule(c.Context(), ruleID, req)
	if err != nil {
		if automation.IsValidationError(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		log.Printf("❌ Failed to update rule: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to update rule",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"rule":    rule,
	})
}

// DeleteRule handles DELETE /automation/rules/:id
func (h *RuleHandler) DeleteRule(c *fiber.Ctx) error {
	ruleID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid rule id",
		})
	}

	if err := h.ruleService.DeleteRule(c.Context(), ruleID); err != nil {
		log.Printf("❌ Failed to delete rule: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to delete rule",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}

// GetRuleLogs handles GET /automation/rules/:id/logs
func (h *RuleHandler) GetRuleLogs(c *fiber.Ctx) error {
	ruleID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid rule id",
		})
	}

	limit := c.QueryInt("limit", 50)
	entries, err := h.logRepo.FindByRuleID(c.Context(), ruleID, limit)
	if err != nil {
		log.Printf("❌ Failed to fetch rule logs: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch rule logs",
		})
	}

	return c.JSON(fiber.Map{
		"logs": entries,
	})
}

func tenantIDFromQuery(c *fiber.Ctx) (uuid.UUID, bool) {
	raw := c.Query("tenant_id")
	if raw == "" {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "tenant_id is required",
		})
		return uuid.Nil, false
	}
	tenantID, err := uuid.Parse(raw)
	if err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid tenant_id format",
		})
		return uuid.Nil, false
	}
	return tenantID, true
}
