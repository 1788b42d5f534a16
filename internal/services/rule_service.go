package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/trevocrm/crm-automation-be/internal/core/automation"
	"github.com/trevocrm/crm-automation-be/internal/models"
	"github.com/trevocrm/crm-automation-be/internal/repositories"
)

// RuleService handles automation rule management for the authoring UI.
// The engine itself only reads rules through the worker.
type RuleService struct {
	ruleRepo repositories.RuleRepo
}

// NewRuleService creates a new rule service
func NewRuleService(ruleRepo repositories.RuleRepo) *RuleService {
	return &RuleService{ruleRepo: ruleRepo}
}

// CreateRule validates and persists a new automation rule. Condition and
// action shapes are checked here so dispatch never sees a malformed rule.
func (s *RuleService) CreateRule(ctx context.Context, tenantID uuid.UUID, req automation.CreateRuleRequest) (*models.AutomationRule, error) {
	if req.Name == "" {
		return nil, automation.NewValidationError("name", "is required")
	}
	if err := automation.ValidateTrigger(req.TriggerType, req.TriggerCondition); err != nil {
		return nil, err
	}
	if err := automation.ValidateActions(req.Actions); err != nil {
		return nil, err
	}

	conditionJSON, err := json.Marshal(req.TriggerCondition)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal trigger condition: %w", err)
	}
	actionsJSON, err := json.Marshal(req.Actions)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal actions: %w", err)
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	rule := &models.AutomationRule{
		TenantID:         tenantID,
		Name:             req.Name,
		Description:      req.Description,
		TriggerType:      req.TriggerType,
		TriggerCondition: datatypes.JSON(conditionJSON),
		Actions:          datatypes.JSON(actionsJSON),
		IsActive:         isActive,
	}

	if err := s.ruleRepo.Create(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to create rule: %w", err)
	}

	log.Printf("✅ Automation rule created: %s (ID: %s)", rule.Name, rule.ID)
	return rule, nil
}

// ListRules lists all rules for a tenant
func (s *RuleService) ListRules(ctx context.Context, tenantID uuid.UUID) ([]models.AutomationRule, error) {
	return s.ruleRepo.FindByTenantID(ctx, tenantID)
}

// GetRule retrieves a rule by ID
func (s *RuleService) GetRule(ctx context.Context, ruleID uuid.UUID) (*models.AutomationRule, error) {
	return s.ruleRepo.FindByID(ctx, ruleID)
}

// UpdateRule applies a partial update to an existing rule.
func (s *RuleService) UpdateRule(ctx context.Context, ruleID uuid.UUID, req automation.UpdateRuleRequest) (*models.AutomationRule, error) {
	rule, err := s.ruleRepo.FindByID(ctx, ruleID)
	if err != nil {
		return nil, fmt.Errorf("rule not found: %w", err)
	}

	if req.Name != nil {
		rule.Name = *req.Name
	}
	if req.Description != nil {
		rule.Description = *req.Description
	}
	if req.TriggerType != nil {
		rule.TriggerType = *req.TriggerType
	}

	if req.TriggerCondition != nil {
		conditionJSON, err := json.Marshal(req.TriggerCondition)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal trigger condition: %w", err)
		}
		rule.TriggerCondition = datatypes.JSON(conditionJSON)
	}

	if req.Actions != nil {
		if err := automation.ValidateActions(req.Actions); err != nil {
			return nil, err
		}
		actionsJSON, err := json.Marshal(req.Actions)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal actions: %w", err)
		}
		rule.Actions = datatypes.JSON(actionsJSON)
	}

	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}

	// Re-validate trigger with whatever combination resulted
	cond, err := automation.ParseCondition(rule.TriggerCondition)
	if err != nil {
		return nil, err
	}
	if err := automation.ValidateTrigger(rule.TriggerType, cond); err != nil {
		return nil, err
	}

	if err := s.ruleRepo.Update(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to update rule: %w", err)
	}

	log.Printf("✅ Automation rule updated: %s (ID: %s)", rule.Name, rule.ID)
	return rule, nil
}

// DeleteRule deletes a rule
func (s *RuleService) DeleteRule(ctx context.Context, ruleID uuid.UUID) error {
	if _, err := s.ruleRepo.FindByID(ctx, ruleID); err != nil {
		return fmt.Errorf("rule not found: %w", err)
	}
	if err := s.ruleRepo.Delete(ctx, ruleID); err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	log.Printf("✅ Automation rule deleted: %s", ruleID)
	return nil
}
