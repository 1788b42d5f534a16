package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/trevocrm/crm-automation-be/internal/models"
)

// ActivityRepo persists task records created by automations
type ActivityRepo interface {
	CreateTask(ctx context.Context, task *models.Activity) error
}

type activityRepo struct {
	db *gorm.DB
}

// NewActivityRepo creates a new activity repository
func NewActivityRepo(db *gorm.DB) ActivityRepo {
	return &activityRepo{db: db}
}

func (r *activityRepo) CreateTask(ctx context.Context, task *models.Activity) error {
	return r.db.WithContext(ctx).Create(task).Error
}
