package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trevocrm/crm-automation-be/internal/models"
)

// WebhookRepo interface for webhook subscription and delivery log operations
type WebhookRepo interface {
	Create(ctx context.Context, sub *models.WebhookSubscription) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.WebhookSubscription, error)
	FindActive(ctx context.Context) ([]models.WebhookSubscription, error)
	FindActiveByEvent(ctx context.Context, event string) ([]models.WebhookSubscription, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	CreateDeliveryLog(ctx context.Context, entry *models.WebhookDeliveryLog) error
	FindDeliveryLogs(ctx context.Context, webhookID uuid.UUID, limit int) ([]models.WebhookDeliveryLog, error)
}

type webhookRepo struct {
	db *gorm.DB
}

// NewWebhookRepo creates a new webhook repository
func NewWebhookRepo(db *gorm.DB) WebhookRepo {
	return &webhookRepo{db: db}
}

func (r *webhookRepo) Create(ctx context.Context, sub *models.WebhookSubscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *webhookRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.WebhookSubscription, error) {
	var sub models.WebhookSubscription
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *webhookRepo) FindActive(ctx context.Context) ([]models.WebhookSubscription, error) {
	var subs []models.WebhookSubscription
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&subs).Error
	return subs, err
}

// FindActiveByEvent filters the subscribed event set in Go: the set is a
// small jsonb array and the active subscription count stays modest.
func (r *webhookRepo) FindActiveByEvent(ctx context.Context, event string) ([]models.WebhookSubscription, error) {
	subs, err := r.FindActive(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]models.WebhookSubscription, 0, len(subs))
	for _, sub := range subs {
		if sub.Subscribed(event) {
			matched = append(matched, sub)
		}
	}
	return matched, nil
}

// Deactivate is the logical delete: idempotent, keeps delivery logs valid.
func (r *webhookRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.WebhookSubscription{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

func (r *webhookRepo) CreateDeliveryLog(ctx context.Context, entry *models.WebhookDeliveryLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *webhookRepo) FindDeliveryLogs(ctx context.Context, webhookID uuid.UUID, limit int) ([]models.WebhookDeliveryLog, error) {
	var entries []models.WebhookDeliveryLog
	query := r.db.WithContext(ctx).
		Where("webhook_id = ?", webhookID).
		Order("sent_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&entries).Error
	return entries, err
}
