package schedule

import (
	"time"

	"github.com/terraincognita07/medport/internal/models"
)

// UnitForInterval picks the firing unit of interval reminders. Only hourly
// medications fire in hours; every other dosing interval fires in days.
func UnitForInterval(frequencyTimeInterval string) Unit {
	if frequencyTimeInterval == models.IntervalHour {
		return UnitHour
	}
	return UnitDay
}

// RuleFor builds the rule of a stored reminder. A specific date wins over
// repeat days, which win over the plain interval.
func RuleFor(reminder models.Reminder, frequencyTimeInterval string, location *time.Location) (Rule, error) {
	rule, invalid := ruleFor(reminder, frequencyTimeInterval, location)
	if invalid != nil {
		invalid.ReminderID = reminder.ID
		return Rule{}, invalid
	}
	return rule, nil
}

func ruleFor(reminder models.Reminder, frequencyTimeInterval string, location *time.Location) (Rule, *InvalidRuleError) {
	if location == nil {
		location = time.UTC
	}

	at, err := ParseTimeOfDay(reminder.Time)
	if err != nil {
		return Rule{}, invalidRule("time", "%v", err)
	}

	var pattern Pattern
	switch {
	case reminder.SpecificDate != nil:
		pattern = OneShot{Date: *reminder.SpecificDate}
	case len(reminder.RepeatDays) > 0:
		days, err := ParseWeekdaySet(reminder.RepeatDays)
		if err != nil {
			return Rule{}, invalidRule("repeat_days", "%v", err)
		}
		pattern = Weekly{Days: days}
	default:
		pattern = Every{N: reminder.RepeatInterval, Unit: UnitForInterval(frequencyTimeInterval)}
	}

	return newRule(pattern, at, EffectiveStart(reminder, location), reminder.EndsOn, location)
}

// EffectiveStart is the starts_on date when set, otherwise the creation instant.
func EffectiveStart(reminder models.Reminder, location *time.Location) time.Time {
	if reminder.StartsOn != nil {
		return CalendarDate(*reminder.StartsOn, location)
	}
	return reminder.CreatedAt
}

// StatusFor extracts the due-check inputs of a stored reminder.
func StatusFor(reminder models.Reminder) Status {
	return Status{
		Active:         reminder.Active,
		SnoozeDuration: time.Duration(reminder.SnoozeDuration) * time.Minute,
		SnoozedUntil:   reminder.SnoozedUntil,
		AcknowledgedAt: reminder.LastAcknowledgedAt,
	}
}
