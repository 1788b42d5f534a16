package automation

import "strconv"

// Rule payloads are validated here, at save time, so malformed condition or
// action shapes are rejected at the management boundary instead of failing
// deep inside dispatch.

var validTriggerTypes = map[string]bool{
	TriggerStatusChange:   true,
	TriggerPriorityChange: true,
	TriggerAssignedChange: true,
}

// ValidateTrigger checks the trigger type and condition shape of a rule.
func ValidateTrigger(triggerType string, cond TriggerCondition) error {
	if triggerType == "" {
		return NewValidationError("trigger_type", "is required")
	}
	if !validTriggerTypes[triggerType] {
		return NewValidationError("trigger_type", "unknown trigger type: "+triggerType)
	}

	for _, p := range cond.Predicates {
		if p.Field == "" {
			return NewValidationError("trigger_condition.predicates", "field is required")
		}
		switch p.Operator {
		case "", "equals", "not_equals":
		default:
			return NewValidationError("trigger_condition.predicates", "unknown operator: "+p.Operator)
		}
	}

	return nil
}

// ValidateActions checks every action against its per-type parameter schema.
// An empty list is allowed; such a rule is a no-op at execution time.
func ValidateActions(actions []ActionSpec) error {
	for i, action := range actions {
		if err := validateAction(action); err != nil {
			if ve, ok := err.(*ValidationError); ok {
				ve.Field = "actions[" + strconv.Itoa(i) + "]." + ve.Field
			}
			return err
		}
	}
	return nil
}

func validateAction(action ActionSpec) error {
	switch action.Type {
	case ActionCreateTask:
		if !hasStringParam(action.Params, "title") {
			return NewValidationError("params.title", "is required for create_task")
		}
		if raw, ok := action.Params["due_days"]; ok {
			if _, ok := toInt(raw); !ok {
				return NewValidationError("params.due_days", "must be a number")
			}
		}

	case ActionNotification:
		if !hasStringParam(action.Params, "title") {
			return NewValidationError("params.title", "is required for notification")
		}
		if !hasStringParam(action.Params, "message") {
			return NewValidationError("params.message", "is required for notification")
		}

	case ActionSendEmail:
		if !hasStringParam(action.Params, "subject") {
			return NewValidationError("params.subject", "is required for send_email")
		}
		if !hasStringParam(action.Params, "body") {
			return NewValidationError("params.body", "is required for send_email")
		}

	case ActionSendWhatsApp:
		if !hasStringParam(action.Params, "message") {
			return NewValidationError("params.message", "is required for send_whatsapp")
		}

	case ActionUpdateField:
		if !hasStringParam(action.Params, "field") {
			return NewValidationError("params.field", "is required for update_field")
		}
		if _, ok := action.Params["value"]; !ok {
			return NewValidationError("params.value", "is required for update_field")
		}

	default:
		return NewValidationError("type", "unknown action type: "+string(action.Type))
	}

	return nil
}

func hasStringParam(params map[string]interface{}, key string) bool {
	raw, ok := params[key]
	if !ok {
		return false
	}
	s, ok := raw.(string)
	return ok && s != ""
}

func toInt(raw interface{}) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
