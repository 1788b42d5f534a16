package automation

import (
	"fmt"
	"reflect"
)

// ConditionEvaluator decides whether a rule's trigger condition matches an
// event. Pure, no I/O: tenant, trigger type and is_active preconditions are
// enforced by the rule query before evaluation.
type ConditionEvaluator struct{}

// NewConditionEvaluator creates a new condition evaluator
func NewConditionEvaluator() *ConditionEvaluator {
	return &ConditionEvaluator{}
}

// Matches evaluates the from/to transition constraint and any generic
// predicates against the event. An absent from or to side matches any value.
func (e *ConditionEvaluator) Matches(cond TriggerCondition, event Event) (bool, error) {
	if cond.From != "" && cond.From != event.OldValue() {
		return false, nil
	}
	if cond.To != "" && cond.To != event.NewValue() {
		return false, nil
	}

	for _, predicate := range cond.Predicates {
		ok, err := e.evaluatePredicate(predicate, event.Data)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}

	return true, nil
}

// evaluatePredicate evaluates a single field/operator/value check.
func (e *ConditionEvaluator) evaluatePredicate(p Predicate, data map[string]interface{}) (bool, error) {
	fieldValue, exists := data[p.Field]
	if !exists {
		// A missing field only satisfies not_equals
		return p.Operator == "not_equals", nil
	}

	switch p.Operator {
	case "", "equals":
		return compareEquals(fieldValue, p.Value), nil

	case "not_equals":
		return !compareEquals(fieldValue, p.Value), nil

	default:
		return false, fmt.Errorf("unknown operator: %s", p.Operator)
	}
}

func compareEquals(fieldValue, conditionValue interface{}) bool {
	return reflect.DeepEqual(fieldValue, conditionValue)
}
