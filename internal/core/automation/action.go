package automation

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/trevocrm/crm-automation-be/internal/core/messaging"
	"github.com/trevocrm/crm-automation-be/internal/models"
)

// TaskStore persists task records created by the create_task action.
type TaskStore interface {
	CreateTask(ctx context.Context, task *models.Activity) error
}

// NotificationStore persists in-app notifications (best-effort).
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
}

// EntityStore reads entity snapshots and performs scoped single-field
// updates against the external entity tables.
type EntityStore interface {
	FetchSnapshot(ctx context.Context, tenantID uuid.UUID, entityType string, entityID uuid.UUID) (map[string]interface{}, error)
	UpdateField(ctx context.Context, tenantID uuid.UUID, entityType string, entityID uuid.UUID, field string, value interface{}) error
}

// MessageDispatcher invokes the external email/WhatsApp dispatch service.
type MessageDispatcher interface {
	Dispatch(ctx context.Context, msg messaging.Message) error
}

type actionHandler func(ctx context.Context, spec ActionSpec, event Event, entity map[string]interface{}) error

// Executor runs one action against one entity/event context. Dispatch is a
// strategy map keyed by action type, registered at construction.
type Executor struct {
	tasks         TaskStore
	notifications NotificationStore
	entities      EntityStore
	messenger     MessageDispatcher
	renderer      *Renderer
	now           func() time.Time
	handlers      map[ActionType]actionHandler
}

// NewExecutor creates a new action executor with all handlers registered.
func NewExecutor(tasks TaskStore, notifications NotificationStore, entities EntityStore, messenger MessageDispatcher) *Executor {
	e := &Executor{
		tasks:         tasks,
		notifications: notifications,
		entities:      entities,
		messenger:     messenger,
		renderer:      NewRenderer(),
		now:           time.Now,
	}
	e.handlers = map[ActionType]actionHandler{
		ActionCreateTask:   e.executeCreateTask,
		ActionNotification: e.executeNotification,
		ActionSendEmail:    e.executeSendEmail,
		ActionSendWhatsApp: e.executeSendWhatsApp,
		ActionUpdateField:  e.executeUpdateField,
	}
	return e
}

// Execute runs a single action. Except for the best-effort notification
// action, a returned error fails the whole event (all-or-nothing contract).
func (e *Executor) Execute(ctx context.Context, spec ActionSpec, event Event, entity map[string]interface{}) error {
	handler, exists := e.handlers[spec.Type]
	if !exists {
		return fmt.Errorf("unknown action type: %s", spec.Type)
	}

	log.Printf("🔧 Executing action %s for %s %s", spec.Type, event.EntityType, event.EntityID)
	return handler(ctx, spec, event, entity)
}

// executeCreateTask creates a task on the entity. Failure fails the action.
func (e *Executor) executeCreateTask(ctx context.Context, spec ActionSpec, event Event, entity map[string]interface{}) error {
	title := stringParam(spec.Params, "title", "Nova tarefa")
	description := stringParam(spec.Params, "description", "")

	task := &models.Activity{
		TenantID:    event.TenantID,
		Type:        stringParam(spec.Params, "task_type", "task"),
		Subject:     e.renderer.Render(title, entity, event.Data),
		Description: e.renderer.Render(description, entity, event.Data),
	}

	switch event.EntityType {
	case "lead":
		id := event.EntityID
		task.LeadID = &id
	case "deal":
		id := event.EntityID
		task.DealID = &id
	}

	if days, ok := toInt(spec.Params["due_days"]); ok && days > 0 {
		due := e.now().AddDate(0, 0, days)
		task.DueDate = &due
	}

	task.CreatedBy = e.resolveAssignee(spec.Params, entity)

	if err := e.tasks.CreateTask(ctx, task); err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	log.Printf("✅ Task created for %s %s", event.EntityType, event.EntityID)
	return nil
}

// executeNotification persists an in-app notification. Persistence failure
// is logged and swallowed: notifications are best-effort and never fail the
// enclosing rule.
func (e *Executor) executeNotification(ctx context.Context, spec ActionSpec, event Event, entity map[string]interface{}) error {
	notification := &models.Notification{
		TenantID:   event.TenantID,
		Title:      e.renderer.Render(stringParam(spec.Params, "title", "Notificação"), entity, event.Data),
		Message:    e.renderer.Render(stringParam(spec.Params, "message", ""), entity, event.Data),
		Type:       stringParam(spec.Params, "notification_type", "info"),
		EntityType: event.EntityType,
	}
	entityID := event.EntityID
	notification.EntityID = &entityID

	if userID := stringParam(spec.Params, "user_id", ""); userID != "" {
		notification.UserID = parseUUID(userID)
	} else if owner, ok := entity["assigned_to"].(string); ok {
		notification.UserID = parseUUID(owner)
	}

	if err := e.notifications.CreateNotification(ctx, notification); err != nil {
		log.Printf("⚠️ Failed to create notification: %v", err)
		return nil
	}

	log.Printf("✅ Notification created for %s %s", event.EntityType, event.EntityID)
	return nil
}

// executeSendEmail renders subject/body and invokes the dispatch service.
func (e *Executor) executeSendEmail(ctx context.Context, spec ActionSpec, event Event, entity map[string]interface{}) error {
	recipient := resolveRecipient(spec.Params, entity, "entity_email", "recipient_email", "email")
	if recipient == "" {
		return fmt.Errorf("no recipient email found")
	}

	msg := messaging.Message{
		Channel: messaging.ChannelEmail,
		To:      recipient,
		Subject: e.renderer.Render(stringParam(spec.Params, "subject", ""), entity, event.Data),
		Body:    e.renderer.Render(stringParam(spec.Params, "body", ""), entity, event.Data),
	}

	if err := e.messenger.Dispatch(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Printf("📧 Email sent to %s", recipient)
	return nil
}

// executeSendWhatsApp renders the message and invokes the dispatch service.
func (e *Executor) executeSendWhatsApp(ctx context.Context, spec ActionSpec, event Event, entity map[string]interface{}) error {
	recipient := resolveRecipient(spec.Params, entity, "entity_phone", "recipient_phone", "phone")
	if recipient == "" {
		return fmt.Errorf("no recipient phone found")
	}

	msg := messaging.Message{
		Channel: messaging.ChannelWhatsApp,
		To:      recipient,
		Body:    e.renderer.Render(stringParam(spec.Params, "message", ""), entity, event.Data),
	}

	if err := e.messenger.Dispatch(ctx, msg); err != nil {
		return fmt.Errorf("failed to send WhatsApp: %w", err)
	}

	log.Printf("📤 WhatsApp sent to %s", recipient)
	return nil
}

// executeUpdateField writes a single field on the entity record.
func (e *Executor) executeUpdateField(ctx context.Context, spec ActionSpec, event Event, entity map[string]interface{}) error {
	field := stringParam(spec.Params, "field", "")
	value := spec.Params["value"]

	if err := e.entities.UpdateField(ctx, event.TenantID, event.EntityType, event.EntityID, field, value); err != nil {
		return fmt.Errorf("failed to update field %s: %w", field, err)
	}

	log.Printf("✅ Field %s updated on %s %s", field, event.EntityType, event.EntityID)
	return nil
}

// resolveAssignee maps the assign_to param to a user id: "lead_owner" picks
// the entity's owner, anything else is treated as an explicit id.
func (e *Executor) resolveAssignee(params map[string]interface{}, entity map[string]interface{}) *uuid.UUID {
	assignTo := stringParam(params, "assign_to", "")
	if assignTo == "" {
		return nil
	}
	if assignTo == "lead_owner" {
		if owner, ok := entity["assigned_to"].(string); ok {
			return parseUUID(owner)
		}
		return nil
	}
	return parseUUID(assignTo)
}

// resolveRecipient implements the recipient contract: an entityKeyword param
// value selects the entity's own contact field, an explicit override param
// wins otherwise, and the entity's contact field is the final fallback.
func resolveRecipient(params, entity map[string]interface{}, entityKeyword, overrideKey, entityField string) string {
	if stringParam(params, "recipient", "") == entityKeyword {
		if value, ok := entity[entityField].(string); ok && value != "" {
			return value
		}
	}
	if override := stringParam(params, overrideKey, ""); override != "" {
		return override
	}
	if value, ok := entity[entityField].(string); ok {
		return value
	}
	return ""
}

func stringParam(params map[string]interface{}, key, fallback string) string {
	if raw, ok := params[key]; ok {
		if s, ok := raw.(string); ok && s != "" {
			return s
		}
	}
	return fallback
}

func parseUUID(raw string) *uuid.UUID {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}
