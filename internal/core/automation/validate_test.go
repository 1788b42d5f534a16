package automation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTrigger(t *testing.T) {
	tests := []struct {
		name        string
		triggerType string
		cond        TriggerCondition
		wantErr     string
	}{
		{
			name:        "valid status_change",
			triggerType: TriggerStatusChange,
			cond:        TriggerCondition{From: "new", To: "qualified"},
		},
		{
			name:        "valid priority_change with predicates",
			triggerType: TriggerPriorityChange,
			cond: TriggerCondition{Predicates: []Predicate{
				{Field: "priority", Operator: "equals", Value: "high"},
			}},
		},
		{
			name:        "missing trigger type",
			triggerType: "",
			wantErr:     "trigger_type",
		},
		{
			name:        "unknown trigger type",
			triggerType: "deal_closed",
			wantErr:     "unknown trigger type",
		},
		{
			name:        "predicate without field",
			triggerType: TriggerStatusChange,
			cond:        TriggerCondition{Predicates: []Predicate{{Value: "x"}}},
			wantErr:     "field is required",
		},
		{
			name:        "predicate with unknown operator",
			triggerType: TriggerStatusChange,
			cond: TriggerCondition{Predicates: []Predicate{
				{Field: "priority", Operator: "gte", Value: 3},
			}},
			wantErr: "unknown operator",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTrigger(tt.triggerType, tt.cond)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateActions(t *testing.T) {
	tests := []struct {
		name    string
		actions []ActionSpec
		wantErr string
	}{
		{
			name:    "empty list is allowed",
			actions: nil,
		},
		{
			name: "valid create_task",
			actions: []ActionSpec{{
				Type:   ActionCreateTask,
				Params: map[string]interface{}{"title": "Follow up", "due_days": float64(3)},
			}},
		},
		{
			name: "create_task without title",
			actions: []ActionSpec{{
				Type:   ActionCreateTask,
				Params: map[string]interface{}{"description": "x"},
			}},
			wantErr: "title",
		},
		{
			name: "create_task with non-numeric due_days",
			actions: []ActionSpec{{
				Type:   ActionCreateTask,
				Params: map[string]interface{}{"title": "x", "due_days": "soon"},
			}},
			wantErr: "due_days",
		},
		{
			name: "notification requires title and message",
			actions: []ActionSpec{{
				Type:   ActionNotification,
				Params: map[string]interface{}{"title": "Hi"},
			}},
			wantErr: "message",
		},
		{
			name: "send_email requires subject and body",
			actions: []ActionSpec{{
				Type:   ActionSendEmail,
				Params: map[string]interface{}{"subject": "Hello"},
			}},
			wantErr: "body",
		},
		{
			name: "send_whatsapp requires message",
			actions: []ActionSpec{{
				Type:   ActionSendWhatsApp,
				Params: map[string]interface{}{},
			}},
			wantErr: "message",
		},
		{
			name: "update_field requires field and value",
			actions: []ActionSpec{{
				Type:   ActionUpdateField,
				Params: map[string]interface{}{"field": "status"},
			}},
			wantErr: "value",
		},
		{
			name: "update_field accepts any value type",
			actions: []ActionSpec{{
				Type:   ActionUpdateField,
				Params: map[string]interface{}{"field": "priority", "value": float64(2)},
			}},
		},
		{
			name: "unknown action type rejected",
			actions: []ActionSpec{{
				Type:   ActionType("delete_entity"),
				Params: map[string]interface{}{},
			}},
			wantErr: "unknown action type",
		},
		{
			name: "error names the failing action index",
			actions: []ActionSpec{
				{Type: ActionSendWhatsApp, Params: map[string]interface{}{"message": "hi"}},
				{Type: ActionCreateTask, Params: map[string]interface{}{}},
			},
			wantErr: "actions[1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateActions(tt.actions)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
