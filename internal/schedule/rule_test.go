package schedule

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/medport/internal/models"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func at(year int, month time.Month, day int, hour int, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

func datePtr(year int, month time.Month, day int) *time.Time {
	value := date(year, month, day)
	return &value
}

func TestOneShotYieldsSingleOccurrenceRegardlessOfInterval(t *testing.T) {
	reminder := models.Reminder{
		ID:             7,
		Time:           "09:00",
		RepeatInterval: 0,
		RepeatDays:     []string{"Monday", "Friday"},
		SpecificDate:   datePtr(2025, time.March, 10),
		CreatedAt:      at(2025, time.January, 1, 12, 0),
	}

	rule, err := RuleFor(reminder, models.IntervalHour, time.UTC)
	require.NoError(t, err)
	require.IsType(t, OneShot{}, rule.Pattern())

	got := rule.Upcoming(date(2024, time.January, 1), 10)
	require.Equal(t, []time.Time{at(2025, time.March, 10, 9, 0)}, got)

	_, ok := rule.After(at(2025, time.March, 10, 9, 0))
	require.False(t, ok)
}

func TestWeeklySequenceIsRestartable(t *testing.T) {
	days, err := ParseWeekdaySet([]string{"Monday", "wed"})
	require.NoError(t, err)

	start := at(2025, time.March, 5, 12, 0)
	rule, err := NewRule(Weekly{Days: days}, MustParseTimeOfDay("08:00"), start, nil, time.UTC)
	require.NoError(t, err)

	want := []time.Time{
		at(2025, time.March, 10, 8, 0),
		at(2025, time.March, 12, 8, 0),
		at(2025, time.March, 17, 8, 0),
		at(2025, time.March, 19, 8, 0),
	}
	require.Equal(t, want, rule.Upcoming(start, 4))
	require.Equal(t, want, rule.Upcoming(start, 4))

	var partial []time.Time
	for occurrence := range rule.Occurrences(start) {
		partial = append(partial, occurrence)
		if len(partial) == 2 {
			break
		}
	}
	require.Equal(t, want[:2], partial)
	require.Equal(t, want, rule.Upcoming(start, 4))
}

func TestWeeklyPrevious(t *testing.T) {
	rule, err := NewRule(Weekly{Days: NewWeekdaySet(time.Monday, time.Wednesday)}, MustParseTimeOfDay("08:00"), at(2025, time.March, 5, 12, 0), nil, time.UTC)
	require.NoError(t, err)

	previous, ok := rule.Previous(at(2025, time.March, 16, 23, 0))
	require.True(t, ok)
	require.Equal(t, at(2025, time.March, 12, 8, 0), previous)

	_, ok = rule.Previous(at(2025, time.March, 10, 7, 59))
	require.False(t, ok, "occurrences before the effective start must not be reported")
}

func TestEveryDaysAlignsToFirstOccurrence(t *testing.T) {
	rule, err := NewRule(Every{N: 2, Unit: UnitDay}, MustParseTimeOfDay("09:00"), at(2025, time.March, 10, 7, 0), nil, time.UTC)
	require.NoError(t, err)

	require.Equal(t, []time.Time{
		at(2025, time.March, 10, 9, 0),
		at(2025, time.March, 12, 9, 0),
		at(2025, time.March, 14, 9, 0),
	}, rule.Upcoming(at(2025, time.March, 1, 0, 0), 3))

	next, ok := rule.Next(at(2025, time.March, 11, 10, 0))
	require.True(t, ok)
	require.Equal(t, at(2025, time.March, 12, 9, 0), next)

	previous, ok := rule.Previous(at(2025, time.March, 13, 8, 0))
	require.True(t, ok)
	require.Equal(t, at(2025, time.March, 12, 9, 0), previous)

	_, ok = rule.Previous(at(2025, time.March, 10, 8, 59))
	require.False(t, ok)
}

func TestEveryDaysStartsNextDayWhenTimeAlreadyPassed(t *testing.T) {
	rule, err := NewRule(Every{N: 1, Unit: UnitDay}, MustParseTimeOfDay("09:00"), at(2025, time.March, 10, 10, 30), nil, time.UTC)
	require.NoError(t, err)

	first, ok := rule.First()
	require.True(t, ok)
	require.Equal(t, at(2025, time.March, 11, 9, 0), first)
}

func TestEveryHoursStepsFromAnchor(t *testing.T) {
	rule, err := NewRule(Every{N: 8, Unit: UnitHour}, MustParseTimeOfDay("06:00"), date(2025, time.March, 10), nil, time.UTC)
	require.NoError(t, err)

	require.Equal(t, []time.Time{
		at(2025, time.March, 10, 6, 0),
		at(2025, time.March, 10, 14, 0),
		at(2025, time.March, 10, 22, 0),
		at(2025, time.March, 11, 6, 0),
	}, rule.Upcoming(date(2025, time.March, 10), 4))

	next, ok := rule.Next(at(2025, time.March, 10, 14, 0))
	require.True(t, ok)
	require.Equal(t, at(2025, time.March, 10, 14, 0), next)

	previous, ok := rule.Previous(at(2025, time.March, 10, 21, 59))
	require.True(t, ok)
	require.Equal(t, at(2025, time.March, 10, 14, 0), previous)
}

func TestHourlyUnitComesFromMedicationInterval(t *testing.T) {
	reminder := models.Reminder{Time: "06:00", RepeatInterval: 8, CreatedAt: date(2025, time.March, 10)}

	hourly, err := RuleFor(reminder, models.IntervalHour, time.UTC)
	require.NoError(t, err)
	require.Equal(t, Every{N: 8, Unit: UnitHour}, hourly.Pattern())

	for _, interval := range []string{models.IntervalDay, models.IntervalWeek, models.IntervalBiWeek} {
		rule, err := RuleFor(reminder, interval, time.UTC)
		require.NoError(t, err)
		require.Equal(t, Every{N: 8, Unit: UnitDay}, rule.Pattern(), interval)
	}
}

func TestEndsOnIsInclusive(t *testing.T) {
	rule, err := NewRule(Every{N: 1, Unit: UnitDay}, MustParseTimeOfDay("09:00"), date(2025, time.March, 10), datePtr(2025, time.March, 12), time.UTC)
	require.NoError(t, err)

	got := slices.Collect(rule.Occurrences(date(2025, time.March, 1)))
	require.Equal(t, []time.Time{
		at(2025, time.March, 10, 9, 0),
		at(2025, time.March, 11, 9, 0),
		at(2025, time.March, 12, 9, 0),
	}, got)

	previous, ok := rule.Previous(at(2025, time.April, 1, 0, 0))
	require.True(t, ok)
	require.Equal(t, at(2025, time.March, 12, 9, 0), previous)
}

func TestEndsOnBeforeFirstOccurrenceGivesEmptySequence(t *testing.T) {
	rule, err := NewRule(Weekly{Days: NewWeekdaySet(time.Monday)}, MustParseTimeOfDay("08:00"), date(2025, time.March, 11), datePtr(2025, time.March, 14), time.UTC)
	require.NoError(t, err)

	require.Empty(t, slices.Collect(rule.Occurrences(date(2025, time.January, 1))))
	_, ok := rule.First()
	require.False(t, ok)

	status := Status{Active: true, SnoozeDuration: 10 * time.Minute}
	for _, now := range []time.Time{
		date(2025, time.March, 1),
		at(2025, time.March, 17, 8, 0),
		at(2025, time.March, 12, 8, 0),
		date(2026, time.January, 1),
	} {
		require.Equal(t, NotDue, Evaluate(rule, status, now).State, now)
	}
}

func TestEndsOnSameDayAfterCreationTimeGivesEmptySequence(t *testing.T) {
	reminder := models.Reminder{
		Time:           "09:00",
		RepeatInterval: 1,
		EndsOn:         datePtr(2025, time.March, 10),
		CreatedAt:      at(2025, time.March, 10, 10, 0),
	}

	rule, err := RuleFor(reminder, models.IntervalDay, time.UTC)
	require.NoError(t, err)
	require.Empty(t, rule.Upcoming(date(2025, time.March, 1), 5))
}

func TestInvalidRules(t *testing.T) {
	start := date(2025, time.March, 10)
	nineAM := MustParseTimeOfDay("09:00")

	tests := []struct {
		name    string
		pattern Pattern
		endsOn  *time.Time
		field   string
	}{
		{name: "zero interval", pattern: Every{N: 0}, field: "repeat_interval"},
		{name: "negative interval", pattern: Every{N: -3, Unit: UnitHour}, field: "repeat_interval"},
		{name: "hourly interval past the bound", pattern: Every{N: 3_000_000, Unit: UnitHour}, field: "repeat_interval"},
		{name: "interval that wraps the hour step to zero", pattern: Every{N: 1 << 51, Unit: UnitHour}, field: "repeat_interval"},
		{name: "daily interval past the bound", pattern: Every{N: MaxInterval + 1, Unit: UnitDay}, field: "repeat_interval"},
		{name: "empty weekdays", pattern: Weekly{}, field: "repeat_days"},
		{name: "ends before specific date", pattern: OneShot{Date: date(2025, time.March, 12)}, endsOn: datePtr(2025, time.March, 11), field: "ends_on"},
		{name: "ends before start", pattern: Every{N: 1}, endsOn: datePtr(2025, time.March, 9), field: "ends_on"},
		{name: "missing pattern", pattern: nil, field: "pattern"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRule(tt.pattern, nineAM, start, tt.endsOn, time.UTC)
			var invalid *InvalidRuleError
			require.True(t, errors.As(err, &invalid), "expected InvalidRuleError, got %v", err)
			require.Equal(t, tt.field, invalid.Field)
		})
	}
}

func TestLargestHourlyIntervalStepsForward(t *testing.T) {
	rule, err := NewRule(Every{N: MaxInterval, Unit: UnitHour}, MustParseTimeOfDay("09:00"), date(2025, time.March, 1), nil, time.UTC)
	require.NoError(t, err)

	from := at(2025, time.March, 10, 9, 0)
	next, ok := rule.Next(from)
	require.True(t, ok)
	require.Equal(t, at(2025, time.March, 1, 9, 0).Add(MaxInterval*time.Hour), next)

	previous, ok := rule.Previous(from)
	require.True(t, ok)
	require.Equal(t, at(2025, time.March, 1, 9, 0), previous)
}

func TestRuleForRejectsOversizedStoredInterval(t *testing.T) {
	reminder := models.Reminder{ID: 7, Time: "09:00", RepeatInterval: 3_000_000, CreatedAt: date(2025, time.March, 1)}

	_, err := RuleFor(reminder, models.IntervalHour, time.UTC)
	var invalid *InvalidRuleError
	require.True(t, errors.As(err, &invalid), "expected InvalidRuleError, got %v", err)
	require.Equal(t, "repeat_interval", invalid.Field)
	require.Equal(t, uint(7), invalid.ReminderID)
}

func TestRuleForReportsReminderID(t *testing.T) {
	reminder := models.Reminder{ID: 42, Time: "09:00", RepeatDays: []string{"Funday"}, CreatedAt: date(2025, time.March, 10)}

	_, err := RuleFor(reminder, models.IntervalDay, time.UTC)
	var invalid *InvalidRuleError
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, uint(42), invalid.ReminderID)
	require.Equal(t, "repeat_days", invalid.Field)

	_, err = RuleFor(models.Reminder{ID: 43, Time: "25:00", RepeatInterval: 1, CreatedAt: date(2025, time.March, 10)}, models.IntervalDay, time.UTC)
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, "time", invalid.Field)
}

func TestRuleForPrefersStartsOn(t *testing.T) {
	reminder := models.Reminder{
		Time:           "09:00",
		RepeatInterval: 3,
		StartsOn:       datePtr(2025, time.April, 1),
		CreatedAt:      at(2025, time.March, 10, 12, 0),
	}

	rule, err := RuleFor(reminder, models.IntervalDay, time.UTC)
	require.NoError(t, err)

	first, ok := rule.First()
	require.True(t, ok)
	require.Equal(t, at(2025, time.April, 1, 9, 0), first)
}

func TestDailyRuleKeepsWallClockAcrossDST(t *testing.T) {
	location, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	start := time.Date(2025, time.March, 7, 0, 0, 0, 0, location)
	rule, err := NewRule(Every{N: 1, Unit: UnitDay}, MustParseTimeOfDay("09:00"), start, nil, location)
	require.NoError(t, err)

	for _, occurrence := range rule.Upcoming(start, 5) {
		require.Equal(t, 9, occurrence.Hour(), occurrence.String())
	}
}

func TestParseTimeOfDay(t *testing.T) {
	value, err := ParseTimeOfDay(" 07:05 ")
	require.NoError(t, err)
	require.Equal(t, "07:05:00", value.String())

	value, err = ParseTimeOfDay("23:59:30")
	require.NoError(t, err)
	require.Equal(t, TimeOfDay{Hour: 23, Minute: 59, Second: 30}, value)

	_, err = ParseTimeOfDay("7pm")
	require.Error(t, err)
}

func TestCanonicalWeekdays(t *testing.T) {
	names, err := CanonicalWeekdays([]string{"sun", "WEDNESDAY", "Mon", "monday"})
	require.NoError(t, err)
	require.Equal(t, []string{"Monday", "Wednesday", "Sunday"}, names)

	_, err = CanonicalWeekdays([]string{"someday"})
	require.Error(t, err)
}
