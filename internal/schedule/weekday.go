package schedule

import (
	"fmt"
	"strings"
	"time"
)

// WeekdaySet is a bitmask of time.Weekday values.
type WeekdaySet uint8

var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "thurs": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

func ParseWeekday(raw string) (time.Weekday, error) {
	day, ok := weekdayNames[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return time.Sunday, fmt.Errorf("unknown weekday %q", raw)
	}
	return day, nil
}

func ParseWeekdaySet(names []string) (WeekdaySet, error) {
	var set WeekdaySet
	for _, name := range names {
		day, err := ParseWeekday(name)
		if err != nil {
			return 0, err
		}
		set = set.With(day)
	}
	return set, nil
}

func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var set WeekdaySet
	for _, day := range days {
		set = set.With(day)
	}
	return set
}

func (set WeekdaySet) With(day time.Weekday) WeekdaySet {
	return set | 1<<uint(day)
}

func (set WeekdaySet) Has(day time.Weekday) bool {
	return set&(1<<uint(day)) != 0
}

func (set WeekdaySet) Empty() bool {
	return set == 0
}

// Names lists the set in week order starting on Monday.
func (set WeekdaySet) Names() []string {
	names := make([]string, 0, 7)
	for offset := 1; offset <= 7; offset++ {
		day := time.Weekday(offset % 7)
		if set.Has(day) {
			names = append(names, day.String())
		}
	}
	return names
}

// CanonicalWeekdays normalizes user supplied weekday names.
func CanonicalWeekdays(names []string) ([]string, error) {
	set, err := ParseWeekdaySet(names)
	if err != nil {
		return nil, err
	}
	return set.Names(), nil
}
