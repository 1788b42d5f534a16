package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trevocrm/crm-automation-be/internal/models"
)

// RuleRepo interface for automation rule database operations
type RuleRepo interface {
	Create(ctx context.Context, rule *models.AutomationRule) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.AutomationRule, error)
	FindByTenantID(ctx context.Context, tenantID uuid.UUID) ([]models.AutomationRule, error)
	FindActiveByTrigger(ctx context.Context, tenantID uuid.UUID, triggerType string) ([]models.AutomationRule, error)
	Update(ctx context.Context, rule *models.AutomationRule) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ruleRepo struct {
	db *gorm.DB
}

// NewRuleRepo creates a new automation rule repository
func NewRuleRepo(db *gorm.DB) RuleRepo {
	return &ruleRepo{db: db}
}

func (r *ruleRepo) Create(ctx context.Context, rule *models.AutomationRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

func (r *ruleRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.AutomationRule, error) {
	var rule models.AutomationRule
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rule).Error
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *ruleRepo) FindByTenantID(ctx context.Context, tenantID uuid.UUID) ([]models.AutomationRule, error) {
	var rules []models.AutomationRule
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&rules).Error
	return rules, err
}

func (r *ruleRepo) FindActiveByTrigger(ctx context.Context, tenantID uuid.UUID, triggerType string) ([]models.AutomationRule, error) {
	var rules []models.AutomationRule
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND trigger_type = ? AND is_active = ?", tenantID, triggerType, true).
		Find(&rules).Error
	return rules, err
}

func (r *ruleRepo) Update(ctx context.Context, rule *models.AutomationRule) error {
	return r.db.WithContext(ctx).Save(rule).Error
}

func (r *ruleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.AutomationRule{}).Error
}
