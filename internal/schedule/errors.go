package schedule

import "fmt"

// InvalidRuleError reports a recurrence configuration that cannot be evaluated.
type InvalidRuleError struct {
	ReminderID uint
	Field      string
	Reason     string
}

func (err *InvalidRuleError) Error() string {
	if err.ReminderID != 0 {
		return fmt.Sprintf("invalid recurrence rule for reminder %d: %s: %s", err.ReminderID, err.Field, err.Reason)
	}
	return fmt.Sprintf("invalid recurrence rule: %s: %s", err.Field, err.Reason)
}

func invalidRule(field string, format string, args ...any) *InvalidRuleError {
	return &InvalidRuleError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
