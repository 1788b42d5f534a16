package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trevocrm/crm-automation-be/internal/core/automation"
)

func validCreateRequest() automation.CreateRuleRequest {
	return automation.CreateRuleRequest{
		Name:        "notify on qualification",
		TriggerType: automation.TriggerStatusChange,
		TriggerCondition: automation.TriggerCondition{
			From: "new",
			To:   "qualified",
		},
		Actions: []automation.ActionSpec{{
			Type:   automation.ActionNotification,
			Params: map[string]interface{}{"title": "Lead qualified", "message": "{{name}} moved"},
		}},
	}
}

func TestCreateRule_PersistsValidatedRule(t *testing.T) {
	repo := &fakeRuleRepo{}
	svc := NewRuleService(repo)
	tenantID := uuid.New()

	rule, err := svc.CreateRule(context.Background(), tenantID, validCreateRequest())
	require.NoError(t, err)

	assert.Equal(t, tenantID, rule.TenantID)
	assert.True(t, rule.IsActive)
	require.Len(t, repo.rules, 1)

	cond, err := automation.ParseCondition(rule.TriggerCondition)
	require.NoError(t, err)
	assert.Equal(t, "new", cond.From)
	assert.Equal(t, "qualified", cond.To)

	actions, err := automation.ParseActions(rule.Actions)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, automation.ActionNotification, actions[0].Type)
}

func TestCreateRule_ValidationFailures(t *testing.T) {
	svc := NewRuleService(&fakeRuleRepo{})
	tenantID := uuid.New()

	tests := []struct {
		name   string
		mutate func(*automation.CreateRuleRequest)
	}{
		{
			name:   "missing name",
			mutate: func(r *automation.CreateRuleRequest) { r.Name = "" },
		},
		{
			name:   "unknown trigger type",
			mutate: func(r *automation.CreateRuleRequest) { r.TriggerType = "lead_deleted" },
		},
		{
			name: "malformed action params",
			mutate: func(r *automation.CreateRuleRequest) {
				r.Actions = []automation.ActionSpec{{Type: automation.ActionSendEmail, Params: map[string]interface{}{}}}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			tt.mutate(&req)

			_, err := svc.CreateRule(context.Background(), tenantID, req)
			require.Error(t, err)
			assert.True(t, automation.IsValidationError(err))
		})
	}
}

func TestCreateRule_ExplicitInactive(t *testing.T) {
	svc := NewRuleService(&fakeRuleRepo{})
	inactive := false

	req := validCreateRequest()
	req.IsActive = &inactive

	rule, err := svc.CreateRule(context.Background(), uuid.New(), req)
	require.NoError(t, err)
	assert.False(t, rule.IsActive)
}

func TestUpdateRule_PartialUpdate(t *testing.T) {
	repo := &fakeRuleRepo{}
	svc := NewRuleService(repo)

	rule, err := svc.CreateRule(context.Background(), uuid.New(), validCreateRequest())
	require.NoError(t, err)

	newName := "renamed"
	inactive := false
	updated, err := svc.UpdateRule(context.Background(), rule.ID, automation.UpdateRuleRequest{
		Name:     &newName,
		IsActive: &inactive,
	})
	require.NoError(t, err)

	assert.Equal(t, "renamed", updated.Name)
	assert.False(t, updated.IsActive)
	// Untouched fields survive
	assert.Equal(t, rule.TriggerType, updated.TriggerType)
}

func TestUpdateRule_RejectsInvalidActions(t *testing.T) {
	repo := &fakeRuleRepo{}
	svc := NewRuleService(repo)

	rule, err := svc.CreateRule(context.Background(), uuid.New(), validCreateRequest())
	require.NoError(t, err)

	_, err = svc.UpdateRule(context.Background(), rule.ID, automation.UpdateRuleRequest{
		Actions: []automation.ActionSpec{{Type: "explode", Params: map[string]interface{}{}}},
	})
	require.Error(t, err)
	assert.True(t, automation.IsValidationError(err))
}

func TestUpdateRule_UnknownRule(t *testing.T) {
	svc := NewRuleService(&fakeRuleRepo{})

	_, err := svc.UpdateRule(context.Background(), uuid.New(), automation.UpdateRuleRequest{})
	require.Error(t, err)
}

func TestDeleteRule(t *testing.T) {
	repo := &fakeRuleRepo{}
	svc := NewRuleService(repo)

	rule, err := svc.CreateRule(context.Background(), uuid.New(), validCreateRequest())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteRule(context.Background(), rule.ID))
	assert.Empty(t, repo.rules)

	require.Error(t, svc.DeleteRule(context.Background(), rule.ID))
}
