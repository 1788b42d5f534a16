package automation

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Trigger types a rule can listen for.
const (
	TriggerStatusChange   = "status_change"
	TriggerPriorityChange = "priority_change"
	TriggerAssignedChange = "assigned_change"
)

// ActionType identifies one kind of automation effect.
type ActionType string

const (
	ActionSendEmail    ActionType = "send_email"
	ActionSendWhatsApp ActionType = "send_whatsapp"
	ActionCreateTask   ActionType = "create_task"
	ActionNotification ActionType = "notification"
	ActionUpdateField  ActionType = "update_field"
)

// Predicate is one generic condition check against the event data.
// Operator defaults to "equals" when empty.
type Predicate struct {
	Field    string      `json:"field"`
	Operator string      `json:"operator,omitempty"`
	Value    interface{} `json:"value"`
}

// TriggerCondition constrains which events a rule fires on. From/To are
// equality checks against the event's old/new value; an empty side matches
// any value. Predicates is the generalized form for non-transition checks.
type TriggerCondition struct {
	From       string      `json:"from,omitempty"`
	To         string      `json:"to,omitempty"`
	Predicates []Predicate `json:"predicates,omitempty"`
}

// ActionSpec is one step of a rule: a type plus type-specific params.
type ActionSpec struct {
	Type   ActionType             `json:"type"`
	Params map[string]interface{} `json:"params"`
}

// Event is the in-memory view of one queued domain state change, shared by
// the condition evaluator and the action executor.
type Event struct {
	TenantID   uuid.UUID
	EventType  string
	EntityType string
	EntityID   uuid.UUID
	Data       map[string]interface{}
}

// OldValue returns the event's previous value. The original event writers
// used old_status for stage transitions, so it is accepted as an alias.
func (e Event) OldValue() string {
	return stringField(e.Data, "old_value", "old_status")
}

// NewValue returns the event's new value.
func (e Event) NewValue() string {
	return stringField(e.Data, "new_value", "new_status")
}

func stringField(data map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if v, ok := data[key]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}

// ParseCondition decodes a rule's jsonb trigger condition.
func ParseCondition(raw []byte) (TriggerCondition, error) {
	var cond TriggerCondition
	if len(raw) == 0 {
		return cond, nil
	}
	if err := json.Unmarshal(raw, &cond); err != nil {
		return cond, fmt.Errorf("failed to parse trigger condition: %w", err)
	}
	return cond, nil
}

// ParseActions decodes a rule's jsonb action list.
func ParseActions(raw []byte) ([]ActionSpec, error) {
	var actions []ActionSpec
	if len(raw) == 0 {
		return nil, nil
	}
	if err := json.Unmarshal(raw, &actions); err != nil {
		return nil, fmt.Errorf("failed to parse actions: %w", err)
	}
	return actions, nil
}

// CreateRuleRequest is the request body for creating an automation rule.
type CreateRuleRequest struct {
	Name             string           `json:"name"`
	Description      string           `json:"description"`
	TriggerType      string           `json:"trigger_type"`
	TriggerCondition TriggerCondition `json:"trigger_condition"`
	Actions          []ActionSpec     `json:"actions"`
	IsActive         *bool            `json:"is_active"` // Pointer to allow explicit false
}

// UpdateRuleRequest is the request body for updating an automation rule.
type UpdateRuleRequest struct {
	Name             *string           `json:"name"`
	Description      *string           `json:"description"`
	TriggerType      *string           `json:"trigger_type"`
	TriggerCondition *TriggerCondition `json:"trigger_condition"`
	Actions          []ActionSpec      `json:"actions"`
	IsActive         *bool             `json:"is_active"`
}
