package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AutomationEvent status values. Transitions are monotonic:
// pending -> processing -> processed|failed.
const (
	EventStatusPending    = "pending"
	EventStatusProcessing = "processing"
	EventStatusProcessed  = "processed"
	EventStatusFailed     = "failed"
)

// Automation log statuses, one row per (event, rule) execution attempt.
const (
	LogStatusSuccess = "success"
	LogStatusFailure = "failure"
)

// AutomationRule is a tenant-scoped trigger -> actions mapping authored by
// the rule UI. The engine only reads rules, it never mutates them.
type AutomationRule struct {
	ID               uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID         uuid.UUID      `json:"tenant_id" gorm:"type:uuid;not null;index"`
	Name             string         `json:"name" gorm:"type:varchar(255);not null"`
	Description      string         `json:"description" gorm:"type:text"`
	TriggerType      string         `json:"trigger_type" gorm:"type:varchar(50);not null;index"` // 'status_change', 'priority_change', 'assigned_change'
	TriggerCondition datatypes.JSON `json:"trigger_condition" gorm:"type:jsonb;not null;default:'{}'"`
	Actions          datatypes.JSON `json:"actions" gorm:"type:jsonb;not null;default:'[]'"`
	IsActive         bool           `json:"is_active" gorm:"default:true;index"`
	CreatedAt        time.Time      `json:"created_at" gorm:"autoCreateTime;index:,sort:desc"`
	UpdatedAt        time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

func (AutomationRule) TableName() string {
	return "automation_rules"
}

// AutomationEvent is one queued domain state change awaiting rule evaluation.
// Events are never deleted, they form the audit trail of the engine.
type AutomationEvent struct {
	ID           uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID     uuid.UUID      `json:"tenant_id" gorm:"type:uuid;not null;index"`
	EventType    string         `json:"event_type" gorm:"type:varchar(50);not null;index"`
	EntityType   string         `json:"entity_type" gorm:"type:varchar(50);not null"` // 'lead', 'deal'
	EntityID     uuid.UUID      `json:"entity_id" gorm:"type:uuid;not null"`
	EventData    datatypes.JSON `json:"event_data" gorm:"type:jsonb;not null;default:'{}'"`
	Status       string         `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	ErrorMessage string         `json:"error_message,omitempty" gorm:"type:text"`
	CreatedAt    time.Time      `json:"created_at" gorm:"autoCreateTime;index"`
	ProcessedAt  *time.Time     `json:"processed_at,omitempty"`
}

func (AutomationEvent) TableName() string {
	return "automation_events"
}

// AutomationLog is an append-only record of a single rule execution attempt.
type AutomationLog struct {
	ID           uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID     uuid.UUID      `json:"tenant_id" gorm:"type:uuid;not null;index"`
	RuleID       uuid.UUID      `json:"rule_id" gorm:"column:automation_rule_id;type:uuid;not null;index"`
	EntityType   string         `json:"entity_type" gorm:"type:varchar(50);not null"`
	EntityID     uuid.UUID      `json:"entity_id" gorm:"type:uuid;not null"`
	TriggerType  string         `json:"trigger_type" gorm:"type:varchar(50);not null"`
	TriggerData  datatypes.JSON `json:"trigger_data" gorm:"type:jsonb"`
	ExecutedAt   time.Time      `json:"executed_at" gorm:"autoCreateTime;index:,sort:desc"`
	Status       string         `json:"status" gorm:"type:varchar(20);not null"`
	ErrorMessage string         `json:"error_message,omitempty" gorm:"type:text"`
}

func (AutomationLog) TableName() string {
	return "automation_logs"
}
