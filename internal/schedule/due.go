package schedule

import (
	"fmt"
	"time"
)

type State int

const (
	NotDue State = iota
	Due
	Snoozed
)

func (state State) String() string {
	switch state {
	case Due:
		return "Due"
	case Snoozed:
		return "Snoozed"
	default:
		return "NotDue"
	}
}

func (state State) MarshalText() ([]byte, error) {
	return []byte(state.String()), nil
}

func (state *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Due":
		*state = Due
	case "Snoozed":
		*state = Snoozed
	case "NotDue":
		*state = NotDue
	default:
		return fmt.Errorf("unknown due state %q", string(text))
	}
	return nil
}

// Status is the mutable per-reminder input of the due check.
type Status struct {
	Active         bool
	SnoozeDuration time.Duration
	SnoozedUntil   *time.Time
	AcknowledgedAt *time.Time
}

type Evaluation struct {
	State State
	// Occurrence is the scheduled time the state refers to, when there is one.
	Occurrence *time.Time
	// Next is the first occurrence strictly after the evaluation instant.
	Next *time.Time
}

// Evaluate decides the due state of a reminder at now.
func Evaluate(rule Rule, status Status, now time.Time) Evaluation {
	result := Evaluation{State: NotDue}
	if next, ok := rule.After(now); ok {
		result.Next = &next
	}

	if !status.Active {
		return result
	}

	if status.SnoozedUntil != nil && now.Before(*status.SnoozedUntil) {
		result.State = Snoozed
		if occurrence, ok := rule.Previous(now); ok {
			result.Occurrence = &occurrence
		}
		return result
	}

	if rule.Ended(now) {
		return result
	}
	occurrence, ok := rule.Previous(now)
	if !ok {
		return result
	}
	result.Occurrence = &occurrence

	if status.AcknowledgedAt != nil && !status.AcknowledgedAt.Before(occurrence) {
		return result
	}

	grace := max(status.SnoozeDuration, 0)
	if withinWindow(now, occurrence, grace) {
		result.State = Due
		return result
	}

	if status.SnoozedUntil != nil && !status.SnoozedUntil.Before(occurrence) && withinWindow(now, *status.SnoozedUntil, grace) {
		result.State = Due
	}
	return result
}

// withinWindow reports whether now lies in [start, start+grace], both ends inclusive.
func withinWindow(now time.Time, start time.Time, grace time.Duration) bool {
	if now.Before(start) {
		return false
	}
	return now.Sub(start) <= grace
}
