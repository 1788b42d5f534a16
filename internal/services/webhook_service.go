package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/trevocrm/crm-automation-be/internal/core/automation"
	"github.com/trevocrm/crm-automation-be/internal/core/webhook"
	"github.com/trevocrm/crm-automation-be/internal/models"
	"github.com/trevocrm/crm-automation-be/internal/repositories"
)

// WebhookService owns the subscription registry and fronts the dispatcher.
type WebhookService struct {
	webhookRepo repositories.WebhookRepo
	dispatcher  *webhook.Dispatcher
}

// NewWebhookService creates a new webhook service
func NewWebhookService(webhookRepo repositories.WebhookRepo, dispatcher *webhook.Dispatcher) *WebhookService {
	return &WebhookService{
		webhookRepo: webhookRepo,
		dispatcher:  dispatcher,
	}
}

// Register creates an active subscription for the given url and event set.
func (s *WebhookService) Register(ctx context.Context, url string, events []string, secret string) (*models.WebhookSubscription, error) {
	if url == "" {
		return nil, automation.NewValidationError("url", "is required")
	}
	if len(events) == 0 {
		return nil, automation.NewValidationError("events", "at least one event is required")
	}

	eventsJSON, err := json.Marshal(events)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal events: %w", err)
	}

	sub := &models.WebhookSubscription{
		URL:      url,
		Events:   datatypes.JSON(eventsJSON),
		Secret:   secret,
		IsActive: true,
	}

	if err := s.webhookRepo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to register webhook: %w", err)
	}

	log.Printf("✅ Webhook registered: %s (%d events)", sub.URL, len(events))
	return sub, nil
}

// List returns all active subscriptions
func (s *WebhookService) List(ctx context.Context) ([]models.WebhookSubscription, error) {
	return s.webhookRepo.FindActive(ctx)
}

// Delete deactivates a subscription. Idempotent: deactivating an already
// inactive or unknown id is not an error.
func (s *WebhookService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.webhookRepo.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}
	log.Printf("✅ Webhook deactivated: %s", id)
	return nil
}

// DeliveryLogs returns the most recent delivery outcomes for a subscription.
func (s *WebhookService) DeliveryLogs(ctx context.Context, id uuid.UUID, limit int) ([]models.WebhookDeliveryLog, error) {
	if _, err := s.webhookRepo.FindByID(ctx, id); err != nil {
		return nil, fmt.Errorf("webhook not found: %w", err)
	}
	return s.webhookRepo.FindDeliveryLogs(ctx, id, limit)
}

// Trigger fans the event out to all matching subscriptions. Individual
// delivery failures only show up in the aggregate counts.
func (s *WebhookService) Trigger(ctx context.Context, event string, data map[string]interface{}) (webhook.Result, error) {
	return s.dispatcher.Trigger(ctx, event, data)
}
