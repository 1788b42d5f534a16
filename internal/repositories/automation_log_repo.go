package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trevocrm/crm-automation-be/internal/models"
)

// AutomationLogRepo interface for execution log operations. Logs are
// append-only: no update or delete.
type AutomationLogRepo interface {
	Create(ctx context.Context, entry *models.AutomationLog) error
	FindByRuleID(ctx context.Context, ruleID uuid.UUID, limit int) ([]models.AutomationLog, error)
}

type automationLogRepo struct {
	db *gorm.DB
}

// NewAutomationLogRepo creates a new automation log repository
func NewAutomationLogRepo(db *gorm.DB) AutomationLogRepo {
	return &automationLogRepo{db: db}
}

func (r *automationLogRepo) Create(ctx context.Context, entry *models.AutomationLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *automationLogRepo) FindByRuleID(ctx context.Context, ruleID uuid.UUID, limit int) ([]models.AutomationLog, error) {
	var entries []models.AutomationLog
	query := r.db.WithContext(ctx).
		Where("automation_rule_id = ?", ruleID).
		Order("executed_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&entries).Error
	return entries, err
}
