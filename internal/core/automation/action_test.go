package automation

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trevocrm/crm-automation-be/internal/core/messaging"
	"github.com/trevocrm/crm-automation-be/internal/models"
)

type fakeTaskStore struct {
	tasks []*models.Activity
	err   error
}

func (f *fakeTaskStore) CreateTask(_ context.Context, task *models.Activity) error {
	if f.err != nil {
		return f.err
	}
	f.tasks = append(f.tasks, task)
	return nil
}

type fakeNotificationStore struct {
	notifications []*models.Notification
	err           error
}

func (f *fakeNotificationStore) CreateNotification(_ context.Context, n *models.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.notifications = append(f.notifications, n)
	return nil
}

type fakeEntityStore struct {
	snapshot map[string]interface{}
	updates  []string
	err      error
}

func (f *fakeEntityStore) FetchSnapshot(_ context.Context, _ uuid.UUID, _ string, _ uuid.UUID) (map[string]interface{}, error) {
	return f.snapshot, f.err
}

func (f *fakeEntityStore) UpdateField(_ context.Context, _ uuid.UUID, _ string, _ uuid.UUID, field string, _ interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.updates = append(f.updates, field)
	return nil
}

type fakeMessenger struct {
	sent []messaging.Message
	err  error
}

func (f *fakeMessenger) Dispatch(_ context.Context, msg messaging.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type executorFixture struct {
	executor      *Executor
	tasks         *fakeTaskStore
	notifications *fakeNotificationStore
	entities      *fakeEntityStore
	messenger     *fakeMessenger
}

func newExecutorFixture() *executorFixture {
	f := &executorFixture{
		tasks:         &fakeTaskStore{},
		notifications: &fakeNotificationStore{},
		entities:      &fakeEntityStore{},
		messenger:     &fakeMessenger{},
	}
	f.executor = NewExecutor(f.tasks, f.notifications, f.entities, f.messenger)
	f.executor.now = fixedClock
	f.executor.renderer = NewRendererWithClock(fixedClock)
	return f
}

func testEvent(entityType string) Event {
	return Event{
		TenantID:   uuid.New(),
		EventType:  TriggerStatusChange,
		EntityType: entityType,
		EntityID:   uuid.New(),
		Data:       map[string]interface{}{"old_value": "new", "new_value": "qualified"},
	}
}

func TestExecute_UnknownActionType(t *testing.T) {
	f := newExecutorFixture()

	err := f.executor.Execute(context.Background(), ActionSpec{Type: "explode"}, testEvent("lead"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown action type")
}

func TestExecuteCreateTask(t *testing.T) {
	f := newExecutorFixture()
	event := testEvent("lead")
	entity := map[string]interface{}{"name": "Maria"}

	spec := ActionSpec{
		Type: ActionCreateTask,
		Params: map[string]interface{}{
			"title":    "Follow up {{name}}",
			"due_days": float64(3),
		},
	}

	require.NoError(t, f.executor.Execute(context.Background(), spec, event, entity))
	require.Len(t, f.tasks.tasks, 1)

	task := f.tasks.tasks[0]
	assert.Equal(t, "Follow up Maria", task.Subject)
	assert.Equal(t, event.TenantID, task.TenantID)
	require.NotNil(t, task.LeadID)
	assert.Equal(t, event.EntityID, *task.LeadID)
	assert.Nil(t, task.DealID)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, fixedClock().AddDate(0, 0, 3), *task.DueDate)
}

func TestExecuteCreateTask_Defaults(t *testing.T) {
	f := newExecutorFixture()
	event := testEvent("deal")

	spec := ActionSpec{Type: ActionCreateTask, Params: map[string]interface{}{}}
	require.NoError(t, f.executor.Execute(context.Background(), spec, event, nil))
	require.Len(t, f.tasks.tasks, 1)

	task := f.tasks.tasks[0]
	assert.Equal(t, "Nova tarefa", task.Subject)
	require.NotNil(t, task.DealID)
	assert.Nil(t, task.LeadID)
	assert.Nil(t, task.DueDate)
}

func TestExecuteCreateTask_AssignToLeadOwner(t *testing.T) {
	f := newExecutorFixture()
	owner := uuid.New()
	entity := map[string]interface{}{"assigned_to": owner.String()}

	spec := ActionSpec{
		Type:   ActionCreateTask,
		Params: map[string]interface{}{"title": "x", "assign_to": "lead_owner"},
	}

	require.NoError(t, f.executor.Execute(context.Background(), spec, testEvent("lead"), entity))
	require.Len(t, f.tasks.tasks, 1)
	require.NotNil(t, f.tasks.tasks[0].CreatedBy)
	assert.Equal(t, owner, *f.tasks.tasks[0].CreatedBy)
}

func TestExecuteCreateTask_StoreFailureFailsAction(t *testing.T) {
	f := newExecutorFixture()
	f.tasks.err = errors.New("insert failed")

	spec := ActionSpec{Type: ActionCreateTask, Params: map[string]interface{}{"title": "x"}}
	err := f.executor.Execute(context.Background(), spec, testEvent("lead"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create task")
}

func TestExecuteNotification_PersistenceFailureIsSwallowed(t *testing.T) {
	f := newExecutorFixture()
	f.notifications.err = errors.New("insert failed")

	spec := ActionSpec{
		Type:   ActionNotification,
		Params: map[string]interface{}{"title": "Hi", "message": "lead moved"},
	}

	assert.NoError(t, f.executor.Execute(context.Background(), spec, testEvent("lead"), nil))
}

func TestExecuteNotification_RendersAndTargetsOwner(t *testing.T) {
	f := newExecutorFixture()
	owner := uuid.New()
	event := testEvent("lead")
	entity := map[string]interface{}{"name": "Maria", "assigned_to": owner.String()}

	spec := ActionSpec{
		Type:   ActionNotification,
		Params: map[string]interface{}{"title": "Lead {{name}}", "message": "now {{new_value}}"},
	}

	require.NoError(t, f.executor.Execute(context.Background(), spec, event, entity))
	require.Len(t, f.notifications.notifications, 1)

	n := f.notifications.notifications[0]
	assert.Equal(t, "Lead Maria", n.Title)
	assert.Equal(t, "now qualified", n.Message)
	require.NotNil(t, n.UserID)
	assert.Equal(t, owner, *n.UserID)
	require.NotNil(t, n.EntityID)
	assert.Equal(t, event.EntityID, *n.EntityID)
}

func TestExecuteSendEmail_RecipientResolution(t *testing.T) {
	entity := map[string]interface{}{"email": "lead@example.com"}

	tests := []struct {
		name   string
		params map[string]interface{}
		want   string
	}{
		{
			name:   "entity_email keyword picks lead email",
			params: map[string]interface{}{"recipient": "entity_email", "subject": "s", "body": "b"},
			want:   "lead@example.com",
		},
		{
			name:   "explicit recipient_email wins",
			params: map[string]interface{}{"recipient_email": "boss@example.com", "subject": "s", "body": "b"},
			want:   "boss@example.com",
		},
		{
			name:   "falls back to entity email",
			params: map[string]interface{}{"subject": "s", "body": "b"},
			want:   "lead@example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newExecutorFixture()
			spec := ActionSpec{Type: ActionSendEmail, Params: tt.params}

			require.NoError(t, f.executor.Execute(context.Background(), spec, testEvent("lead"), entity))
			require.Len(t, f.messenger.sent, 1)
			assert.Equal(t, tt.want, f.messenger.sent[0].To)
			assert.Equal(t, messaging.ChannelEmail, f.messenger.sent[0].Channel)
		})
	}
}

func TestExecuteSendEmail_NoRecipientFails(t *testing.T) {
	f := newExecutorFixture()
	spec := ActionSpec{Type: ActionSendEmail, Params: map[string]interface{}{"subject": "s", "body": "b"}}

	err := f.executor.Execute(context.Background(), spec, testEvent("lead"), map[string]interface{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no recipient email")
	assert.Empty(t, f.messenger.sent)
}

func TestExecuteSendWhatsApp(t *testing.T) {
	f := newExecutorFixture()
	entity := map[string]interface{}{"phone": "+5511999990000", "name": "Maria"}

	spec := ActionSpec{
		Type:   ActionSendWhatsApp,
		Params: map[string]interface{}{"message": "Oi {{name}}"},
	}

	require.NoError(t, f.executor.Execute(context.Background(), spec, testEvent("lead"), entity))
	require.Len(t, f.messenger.sent, 1)
	assert.Equal(t, messaging.ChannelWhatsApp, f.messenger.sent[0].Channel)
	assert.Equal(t, "+5511999990000", f.messenger.sent[0].To)
	assert.Equal(t, "Oi Maria", f.messenger.sent[0].Body)
}

func TestExecuteSendWhatsApp_DispatchFailureFailsAction(t *testing.T) {
	f := newExecutorFixture()
	f.messenger.err = errors.New("service unavailable")
	entity := map[string]interface{}{"phone": "+5511999990000"}

	spec := ActionSpec{Type: ActionSendWhatsApp, Params: map[string]interface{}{"message": "oi"}}
	err := f.executor.Execute(context.Background(), spec, testEvent("lead"), entity)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send WhatsApp")
}

func TestExecuteUpdateField(t *testing.T) {
	f := newExecutorFixture()

	spec := ActionSpec{
		Type:   ActionUpdateField,
		Params: map[string]interface{}{"field": "priority", "value": "high"},
	}

	require.NoError(t, f.executor.Execute(context.Background(), spec, testEvent("deal"), nil))
	assert.Equal(t, []string{"priority"}, f.entities.updates)
}
