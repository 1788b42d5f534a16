package automation

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ValidationError reports a malformed rule or webhook management request.
// It surfaces synchronously as HTTP 400 at the management boundary.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// RuleExecutionError captures a failure while executing a matched rule.
// It aborts the remainder of the event's processing: the event is marked
// failed with this message and is not retried automatically.
type RuleExecutionError struct {
	RuleID     uuid.UUID
	ActionType ActionType
	Err        error
}

func (e *RuleExecutionError) Error() string {
	if e.ActionType != "" {
		return fmt.Sprintf("rule %s: action %s failed: %v", e.RuleID, e.ActionType, e.Err)
	}
	return fmt.Sprintf("rule %s: %v", e.RuleID, e.Err)
}

func (e *RuleExecutionError) Unwrap() error {
	return e.Err
}
