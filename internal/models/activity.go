package models

import (
	"time"

	"github.com/google/uuid"
)

// Activity is a task record created by the create_task automation action.
// It links to the originating entity through lead_id or deal_id.
type Activity struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID    uuid.UUID  `json:"tenant_id" gorm:"type:uuid;not null;index"`
	Type        string     `json:"type" gorm:"type:varchar(50);not null;default:'task'"`
	Subject     string     `json:"subject" gorm:"type:varchar(255);not null"`
	Description string     `json:"description" gorm:"type:text"`
	LeadID      *uuid.UUID `json:"lead_id,omitempty" gorm:"type:uuid;index"`
	DealID      *uuid.UUID `json:"deal_id,omitempty" gorm:"type:uuid;index"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedBy   *uuid.UUID `json:"created_by,omitempty" gorm:"type:uuid"`
	Completed   bool       `json:"completed" gorm:"default:false"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime;index:,sort:desc"`
}

func (Activity) TableName() string {
	return "activities"
}

// Notification is an in-app notification row created by the notification
// action. Persistence is best-effort, see the action executor.
type Notification struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID   uuid.UUID  `json:"tenant_id" gorm:"type:uuid;not null;index"`
	UserID     *uuid.UUID `json:"user_id,omitempty" gorm:"type:uuid;index"`
	Title      string     `json:"title" gorm:"type:varchar(255);not null"`
	Message    string     `json:"message" gorm:"type:text"`
	Type       string     `json:"type" gorm:"type:varchar(50);not null;default:'info'"`
	EntityType string     `json:"entity_type" gorm:"type:varchar(50)"`
	EntityID   *uuid.UUID `json:"entity_id,omitempty" gorm:"type:uuid"`
	Read       bool       `json:"read" gorm:"default:false"`
	CreatedAt  time.Time  `json:"created_at" gorm:"autoCreateTime;index:,sort:desc"`
}

func (Notification) TableName() string {
	return "notifications"
}
