package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trevocrm/crm-automation-be/internal/models"
)

// EventRepo interface for automation event queue operations
type EventRepo interface {
	Create(ctx context.Context, event *models.AutomationEvent) error
	FindPending(ctx context.Context, limit int) ([]models.AutomationEvent, error)
	Claim(ctx context.Context, id uuid.UUID) (bool, error)
	MarkProcessed(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error
}

type eventRepo struct {
	db *gorm.DB
}

// NewEventRepo creates a new automation event repository
func NewEventRepo(db *gorm.DB) EventRepo {
	return &eventRepo{db: db}
}

func (r *eventRepo) Create(ctx context.Context, event *models.AutomationEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// FindPending returns the oldest pending events first (FIFO).
func (r *eventRepo) FindPending(ctx context.Context, limit int) ([]models.AutomationEvent, error) {
	var events []models.AutomationEvent
	err := r.db.WithContext(ctx).
		Where("status = ?", models.EventStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

// Claim transitions pending -> processing with a guarded update, so two
// concurrent worker sweeps cannot both take the same event. A false return
// means another worker already claimed it.
func (r *eventRepo) Claim(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.AutomationEvent{}).
		Where("id = ? AND status = ?", id, models.EventStatusPending).
		Update("status", models.EventStatusProcessing)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *eventRepo) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&models.AutomationEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       models.EventStatusProcessed,
			"processed_at": now,
		}).Error
}

func (r *eventRepo) MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&models.AutomationEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        models.EventStatusFailed,
			"error_message": errorMessage,
			"processed_at":  now,
		}).Error
}
