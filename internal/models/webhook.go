package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Webhook delivery outcomes.
const (
	DeliveryStatusSuccess = "success"
	DeliveryStatusFailed  = "failed"
)

// WebhookSubscription is an externally registered delivery target.
// Deletion is logical (is_active=false) so delivery logs keep a valid
// reference to their subscription.
type WebhookSubscription struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	URL       string         `json:"url" gorm:"type:text;not null"`
	Events    datatypes.JSON `json:"events" gorm:"type:jsonb;not null;default:'[]'"`
	Secret    string         `json:"-" gorm:"type:text"`
	IsActive  bool           `json:"is_active" gorm:"default:true;index"`
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime;index:,sort:desc"`
}

func (WebhookSubscription) TableName() string {
	return "webhook_subscriptions"
}

// EventNames unmarshals the subscribed event set.
func (s *WebhookSubscription) EventNames() []string {
	var events []string
	if err := json.Unmarshal(s.Events, &events); err != nil {
		return nil
	}
	return events
}

// Subscribed reports whether the subscription listens for the given event.
func (s *WebhookSubscription) Subscribed(event string) bool {
	for _, name := range s.EventNames() {
		if name == event {
			return true
		}
	}
	return false
}

// WebhookDeliveryLog records the terminal outcome of delivering one event to
// one subscription: exactly one row per subscription per trigger call.
type WebhookDeliveryLog struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WebhookID    uuid.UUID `json:"webhook_id" gorm:"type:uuid;not null;index"`
	Event        string    `json:"event" gorm:"type:varchar(100);not null"`
	Status       string    `json:"status" gorm:"type:varchar(20);not null"`
	HTTPStatus   int       `json:"http_status,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty" gorm:"type:text"`
	Attempt      int       `json:"attempt" gorm:"not null"`
	SentAt       time.Time `json:"sent_at" gorm:"autoCreateTime;index:,sort:desc"`
}

func (WebhookDeliveryLog) TableName() string {
	return "webhook_logs"
}
