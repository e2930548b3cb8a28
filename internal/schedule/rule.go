package schedule

import (
	"iter"
	"time"
)

type Unit int

const (
	UnitDay Unit = iota
	UnitHour
)

func (unit Unit) String() string {
	if unit == UnitHour {
		return "hour"
	}
	return "day"
}

// Pattern is the recurrence variant of a Rule: OneShot, Weekly or Every.
type Pattern interface {
	pattern()
}

// OneShot fires once on Date.
type OneShot struct {
	Date time.Time
}

// Weekly fires on every listed weekday.
type Weekly struct {
	Days WeekdaySet
}

// MaxInterval bounds Every.N so hourly steps stay far from time.Duration overflow.
const MaxInterval = 10000

// Every fires every N units, aligned to the first occurrence on or after the start.
type Every struct {
	N    int
	Unit Unit
}

func (OneShot) pattern() {}
func (Weekly) pattern()  {}
func (Every) pattern()   {}

// Rule describes when a reminder fires. A Rule is immutable; all methods are
// pure functions of the rule and their arguments.
type Rule struct {
	pattern  Pattern
	at       TimeOfDay
	start    time.Time
	endsOn   time.Time
	hasEnd   bool
	location *time.Location
}

// NewRule validates the configuration and builds a Rule. start is the
// effective start instant of recurring patterns; endsOn is an inclusive
// calendar date.
func NewRule(pattern Pattern, at TimeOfDay, start time.Time, endsOn *time.Time, location *time.Location) (Rule, error) {
	rule, invalid := newRule(pattern, at, start, endsOn, location)
	if invalid != nil {
		return Rule{}, invalid
	}
	return rule, nil
}

func newRule(pattern Pattern, at TimeOfDay, start time.Time, endsOn *time.Time, location *time.Location) (Rule, *InvalidRuleError) {
	if location == nil {
		location = time.UTC
	}
	if at.Hour < 0 || at.Hour > 23 || at.Minute < 0 || at.Minute > 59 || at.Second < 0 || at.Second > 59 {
		return Rule{}, invalidRule("time", "out of range %s", at)
	}

	rule := Rule{at: at, location: location}
	if endsOn != nil {
		rule.endsOn = CalendarDate(*endsOn, location)
		rule.hasEnd = true
	}

	switch value := pattern.(type) {
	case OneShot:
		date := CalendarDate(value.Date, location)
		if rule.hasEnd && rule.endsOn.Before(date) {
			return Rule{}, invalidRule("ends_on", "%s precedes specific_date %s", rule.endsOn.Format(time.DateOnly), date.Format(time.DateOnly))
		}
		rule.pattern = OneShot{Date: date}
		return rule, nil
	case Weekly:
		if value.Days.Empty() {
			return Rule{}, invalidRule("repeat_days", "no weekdays selected")
		}
		rule.pattern = value
	case Every:
		if value.N <= 0 {
			return Rule{}, invalidRule("repeat_interval", "must be positive, got %d", value.N)
		}
		if value.N > MaxInterval {
			return Rule{}, invalidRule("repeat_interval", "must be at most %d, got %d", MaxInterval, value.N)
		}
		rule.pattern = value
	default:
		return Rule{}, invalidRule("pattern", "unsupported recurrence pattern %T", pattern)
	}

	if start.IsZero() {
		return Rule{}, invalidRule("starts_on", "recurring rule needs an effective start")
	}
	rule.start = start.In(location)
	if rule.hasEnd && rule.endsOn.Before(DateOf(rule.start, location)) {
		return Rule{}, invalidRule("ends_on", "%s precedes start date %s", rule.endsOn.Format(time.DateOnly), DateOf(rule.start, location).Format(time.DateOnly))
	}
	return rule, nil
}

func (rule Rule) Pattern() Pattern {
	return rule.pattern
}

func (rule Rule) At() TimeOfDay {
	return rule.at
}

func (rule Rule) Location() *time.Location {
	return rule.location
}

// EndsAt returns the exclusive instant after which the rule never fires.
func (rule Rule) EndsAt() (time.Time, bool) {
	if !rule.hasEnd {
		return time.Time{}, false
	}
	return rule.endsOn.AddDate(0, 0, 1), true
}

// Ended reports whether now is past the last day of the rule.
func (rule Rule) Ended(now time.Time) bool {
	cutoff, ok := rule.EndsAt()
	return ok && !now.Before(cutoff)
}

// First returns the earliest occurrence of the rule.
func (rule Rule) First() (time.Time, bool) {
	return rule.Next(time.Time{})
}

// Next returns the earliest occurrence at or after from.
func (rule Rule) Next(from time.Time) (time.Time, bool) {
	if rule.pattern == nil {
		return time.Time{}, false
	}
	candidate, ok := rule.nextUnbounded(from)
	if !ok || rule.Ended(candidate) {
		return time.Time{}, false
	}
	return candidate, true
}

// After returns the earliest occurrence strictly after t.
func (rule Rule) After(t time.Time) (time.Time, bool) {
	return rule.Next(t.Add(time.Nanosecond))
}

// Previous returns the latest occurrence at or before at.
func (rule Rule) Previous(at time.Time) (time.Time, bool) {
	if rule.pattern == nil {
		return time.Time{}, false
	}
	if cutoff, ok := rule.EndsAt(); ok && !at.Before(cutoff) {
		at = cutoff.Add(-time.Nanosecond)
	}
	return rule.previousUnbounded(at.In(rule.location))
}

// Occurrences yields every occurrence at or after from in ascending order.
// The sequence is lazy, infinite unless the rule ends, and restarts from the
// same point on every range.
func (rule Rule) Occurrences(from time.Time) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		cursor := from
		for {
			next, ok := rule.Next(cursor)
			if !ok || !yield(next) {
				return
			}
			cursor = next.Add(time.Nanosecond)
		}
	}
}

// Upcoming collects at most limit occurrences at or after from.
func (rule Rule) Upcoming(from time.Time, limit int) []time.Time {
	result := make([]time.Time, 0, max(limit, 0))
	if limit <= 0 {
		return result
	}
	for occurrence := range rule.Occurrences(from) {
		result = append(result, occurrence)
		if len(result) == limit {
			break
		}
	}
	return result
}

func (rule Rule) nextUnbounded(from time.Time) (time.Time, bool) {
	from = from.In(rule.location)

	switch pattern := rule.pattern.(type) {
	case OneShot:
		occurrence := rule.at.On(pattern.Date, rule.location)
		if occurrence.Before(from) {
			return time.Time{}, false
		}
		return occurrence, true
	case Weekly:
		if from.Before(rule.start) {
			from = rule.start
		}
		day := DateOf(from, rule.location)
		for offset := 0; offset <= 7; offset++ {
			candidateDay := day.AddDate(0, 0, offset)
			if !pattern.Days.Has(candidateDay.Weekday()) {
				continue
			}
			candidate := rule.at.On(candidateDay, rule.location)
			if !candidate.Before(from) {
				return candidate, true
			}
		}
		return time.Time{}, false
	case Every:
		first := rule.firstEvery()
		if !from.After(first) {
			return first, true
		}
		if pattern.Unit == UnitHour {
			step := time.Duration(pattern.N) * time.Hour
			elapsed := from.Sub(first)
			steps := elapsed / step
			if elapsed%step != 0 {
				steps++
			}
			return first.Add(steps * step), true
		}
		steps := daysBetween(first, from) / pattern.N
		candidate := first.AddDate(0, 0, steps*pattern.N)
		if candidate.Before(from) {
			candidate = first.AddDate(0, 0, (steps+1)*pattern.N)
		}
		return candidate, true
	}
	return time.Time{}, false
}

func (rule Rule) previousUnbounded(at time.Time) (time.Time, bool) {
	switch pattern := rule.pattern.(type) {
	case OneShot:
		occurrence := rule.at.On(pattern.Date, rule.location)
		if occurrence.After(at) {
			return time.Time{}, false
		}
		return occurrence, true
	case Weekly:
		if at.Before(rule.start) {
			return time.Time{}, false
		}
		day := DateOf(at, rule.location)
		for offset := 0; offset <= 7; offset++ {
			candidateDay := day.AddDate(0, 0, -offset)
			if !pattern.Days.Has(candidateDay.Weekday()) {
				continue
			}
			candidate := rule.at.On(candidateDay, rule.location)
			if candidate.After(at) {
				continue
			}
			if candidate.Before(rule.start) {
				return time.Time{}, false
			}
			return candidate, true
		}
		return time.Time{}, false
	case Every:
		first := rule.firstEvery()
		if at.Before(first) {
			return time.Time{}, false
		}
		if pattern.Unit == UnitHour {
			step := time.Duration(pattern.N) * time.Hour
			return first.Add(at.Sub(first) / step * step), true
		}
		steps := daysBetween(first, at) / pattern.N
		candidate := first.AddDate(0, 0, steps*pattern.N)
		if candidate.After(at) {
			if steps == 0 {
				return time.Time{}, false
			}
			candidate = first.AddDate(0, 0, (steps-1)*pattern.N)
		}
		return candidate, true
	}
	return time.Time{}, false
}

func (rule Rule) firstEvery() time.Time {
	startDay := DateOf(rule.start, rule.location)
	first := rule.at.On(startDay, rule.location)
	if first.Before(rule.start) {
		first = rule.at.On(startDay.AddDate(0, 0, 1), rule.location)
	}
	return first
}
