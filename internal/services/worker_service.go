package services

import (
	"context"
	"encoding/json"
	"log"

	"github.com/trevocrm/crm-automation-be/internal/core/automation"
	"github.com/trevocrm/crm-automation-be/internal/models"
	"github.com/trevocrm/crm-automation-be/internal/repositories"
)

// WorkerService drains the automation event queue. One Run call is one
// run-to-completion sweep, invoked by the runner binary or the manual run
// endpoint; it never loops or sleeps internally.
type WorkerService struct {
	eventRepo repositories.EventRepo
	ruleRepo  repositories.RuleRepo
	logRepo   repositories.AutomationLogRepo
	entities  automation.EntityStore
	evaluator *automation.ConditionEvaluator
	executor  *automation.Executor
}

// NewWorkerService creates a new event worker
func NewWorkerService(
	eventRepo repositories.EventRepo,
	ruleRepo repositories.RuleRepo,
	logRepo repositories.AutomationLogRepo,
	entities automation.EntityStore,
	executor *automation.Executor,
) *WorkerService {
	return &WorkerService{
		eventRepo: eventRepo,
		ruleRepo:  ruleRepo,
		logRepo:   logRepo,
		entities:  entities,
		evaluator: automation.NewConditionEvaluator(),
		executor:  executor,
	}
}

// Run processes up to batchSize pending events in FIFO order and returns
// the processed and failed counts. Events another worker claims first are
// skipped. Failed events are terminal: re-processing requires an operator
// to reset their status to pending.
func (s *WorkerService) Run(ctx context.Context, batchSize int) (processed, failed int, err error) {
	events, err := s.eventRepo.FindPending(ctx, batchSize)
	if err != nil {
		return 0, 0, err
	}
	if len(events) == 0 {
		return 0, 0, nil
	}

	log.Printf("🔄 Automation worker: processing %d events", len(events))

	for i := range events {
		event := &events[i]

		claimed, claimErr := s.eventRepo.Claim(ctx, event.ID)
		if claimErr != nil {
			log.Printf("⚠️ Failed to claim event %s: %v", event.ID, claimErr)
			failed++
			continue
		}
		if !claimed {
			// Another worker invocation took this event
			continue
		}

		if procErr := s.processEvent(ctx, event); procErr != nil {
			log.Printf("❌ Event %s failed: %v", event.ID, procErr)
			if markErr := s.eventRepo.MarkFailed(ctx, event.ID, procErr.Error()); markErr != nil {
				log.Printf("⚠️ Failed to mark event %s as failed: %v", event.ID, markErr)
			}
			failed++
			continue
		}

		if markErr := s.eventRepo.MarkProcessed(ctx, event.ID); markErr != nil {
			log.Printf("⚠️ Failed to mark event %s as processed: %v", event.ID, markErr)
			failed++
			continue
		}
		processed++
	}

	log.Printf("✅ Automation worker: %d processed, %d errors", processed, failed)
	return processed, failed, nil
}

// processEvent evaluates all matching rules and executes their actions.
// The first failing action aborts the remaining actions and the remaining
// rules: the whole event is marked failed (all-or-nothing per event).
// An event with zero matching rules is still a success.
func (s *WorkerService) processEvent(ctx context.Context, event *models.AutomationEvent) error {
	var data map[string]interface{}
	if err := json.Unmarshal(event.EventData, &data); err != nil {
		return &automation.RuleExecutionError{Err: err}
	}

	evt := automation.Event{
		TenantID:   event.TenantID,
		EventType:  event.EventType,
		EntityType: event.EntityType,
		EntityID:   event.EntityID,
		Data:       data,
	}

	rules, err := s.ruleRepo.FindActiveByTrigger(ctx, event.TenantID, event.EventType)
	if err != nil {
		return err
	}
	if len(rules) == 0 {
		return nil
	}

	entity, err := s.entities.FetchSnapshot(ctx, event.TenantID, event.EntityType, event.EntityID)
	if err != nil {
		return err
	}

	for i := range rules {
		rule := &rules[i]

		cond, err := automation.ParseCondition(rule.TriggerCondition)
		if err != nil {
			return &automation.RuleExecutionError{RuleID: rule.ID, Err: err}
		}

		matches, err := s.evaluator.Matches(cond, evt)
		if err != nil {
			return &automation.RuleExecutionError{RuleID: rule.ID, Err: err}
		}
		if !matches {
			continue
		}

		log.Printf("⚙️ Executing rule %q for event %s", rule.Name, event.ID)
		execErr := s.executeRule(ctx, rule, evt, entity)
		s.writeLog(ctx, event, rule, execErr)
		if execErr != nil {
			return execErr
		}
	}

	return nil
}

// executeRule runs the rule's actions strictly in declared order.
func (s *WorkerService) executeRule(ctx context.Context, rule *models.AutomationRule, evt automation.Event, entity map[string]interface{}) error {
	actions, err := automation.ParseActions(rule.Actions)
	if err != nil {
		return &automation.RuleExecutionError{RuleID: rule.ID, Err: err}
	}

	for _, action := range actions {
		if err := s.executor.Execute(ctx, action, evt, entity); err != nil {
			return &automation.RuleExecutionError{RuleID: rule.ID, ActionType: action.Type, Err: err}
		}
	}
	return nil
}

// writeLog appends one execution row per (event, rule) attempt. The audit
// trail is best-effort: a failed insert is logged, not raised.
func (s *WorkerService) writeLog(ctx context.Context, event *models.AutomationEvent, rule *models.AutomationRule, execErr error) {
	entry := &models.AutomationLog{
		TenantID:    event.TenantID,
		RuleID:      rule.ID,
		EntityType:  event.EntityType,
		EntityID:    event.EntityID,
		TriggerType: event.EventType,
		TriggerData: event.EventData,
		Status:      models.LogStatusSuccess,
	}
	if execErr != nil {
		entry.Status = models.LogStatusFailure
		entry.ErrorMessage = execErr.Error()
	}

	if err := s.logRepo.Create(ctx, entry); err != nil {
		log.Printf("⚠️ Failed to write automation log for rule %s: %v", rule.ID, err)
	}
}
