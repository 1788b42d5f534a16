package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/trevocrm/crm-automation-be/internal/models"
)

// NotificationRepo persists in-app notifications created by automations
type NotificationRepo interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
}

type notificationRepo struct {
	db *gorm.DB
}

// NewNotificationRepo creates a new notification repository
func NewNotificationRepo(db *gorm.DB) NotificationRepo {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) CreateNotification(ctx context.Context, n *models.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}
