package services

import (
	"strings"
	"time"
)

const exportDateLayout = "2006-01-02"

// ParseExportRange reads optional YYYY-MM-DD bounds, both inclusive, and
// returns them as a half-open instant range [from, to) in location.
func ParseExportRange(rawFrom string, rawTo string, location *time.Location) (*time.Time, *time.Time, error) {
	if location == nil {
		location = time.UTC
	}

	from, err := parseExportDate("from", rawFrom, location)
	if err != nil {
		return nil, nil, err
	}
	lastDay, err := parseExportDate("to", rawTo, location)
	if err != nil {
		return nil, nil, err
	}

	var to *time.Time
	if lastDay != nil {
		end := lastDay.AddDate(0, 0, 1)
		to = &end
	}
	if from != nil && lastDay != nil && lastDay.Before(*from) {
		return nil, nil, invalidField("to", "must not be before from")
	}
	return from, to, nil
}

func parseExportDate(field string, raw string, location *time.Location) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	day, err := time.ParseInLocation(exportDateLayout, raw, location)
	if err != nil {
		return nil, invalidField(field, "must be a YYYY-MM-DD date")
	}
	return &day, nil
}
