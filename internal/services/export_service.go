package services

import (
	"context"
	"fmt"
	"time"

	"github.com/terraincognita07/medport/internal/models"
)

var ExportCSVHeaders = []string{
	"Date",
	"Time",
	"Event",
	"Medication",
	"Reminder",
	"Scheduled",
	"Snoozed until",
}

// EventHistoryReader loads snooze and acknowledge events across reminders.
type EventHistoryReader interface {
	ListEventHistory(ctx context.Context, from *time.Time, to *time.Time) ([]models.ReminderEvent, error)
}

// ExportService renders the reminder event history for download.
type ExportService struct {
	events   EventHistoryReader
	location *time.Location
}

type ExportSummary struct {
	TotalEvents int
	HasData     bool
	DateFrom    string
	DateTo      string
}

type ExportJSONEntry struct {
	OccurredAt   time.Time  `json:"occurred_at"`
	Kind         string     `json:"kind"`
	ReminderID   uint       `json:"reminder_id"`
	MedicationID uint       `json:"medication_id"`
	Medication   string     `json:"medication"`
	Scheduled    string     `json:"scheduled"`
	SnoozedUntil *time.Time `json:"snoozed_until,omitempty"`
}

type ExportCSVRow struct {
	Date         string
	Time         string
	Kind         string
	Medication   string
	ReminderID   uint
	Scheduled    string
	SnoozedUntil string
}

func NewExportService(events EventHistoryReader, location *time.Location) *ExportService {
	if location == nil {
		location = time.UTC
	}
	return &ExportService{events: events, location: location}
}

func (service *ExportService) load(ctx context.Context, from *time.Time, to *time.Time) ([]models.ReminderEvent, error) {
	events, err := service.events.ListEventHistory(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("load event history: %w", err)
	}
	return events, nil
}

func (service *ExportService) BuildSummary(ctx context.Context, from *time.Time, to *time.Time) (ExportSummary, error) {
	events, err := service.load(ctx, from, to)
	if err != nil {
		return ExportSummary{}, err
	}
	if len(events) == 0 {
		return ExportSummary{}, nil
	}

	first := events[0].OccurredAt
	last := events[0].OccurredAt
	for _, event := range events[1:] {
		if event.OccurredAt.Before(first) {
			first = event.OccurredAt
		}
		if event.OccurredAt.After(last) {
			last = event.OccurredAt
		}
	}

	return ExportSummary{
		TotalEvents: len(events),
		HasData:     true,
		DateFrom:    first.In(service.location).Format(exportDateLayout),
		DateTo:      last.In(service.location).Format(exportDateLayout),
	}, nil
}

func (service *ExportService) BuildJSONEntries(ctx context.Context, from *time.Time, to *time.Time) ([]ExportJSONEntry, error) {
	events, err := service.load(ctx, from, to)
	if err != nil {
		return nil, err
	}

	entries := make([]ExportJSONEntry, 0, len(events))
	for _, event := range events {
		medicationID, medication, scheduled := describeEventReminder(event)
		entries = append(entries, ExportJSONEntry{
			OccurredAt:   event.OccurredAt.In(service.location),
			Kind:         event.Kind,
			ReminderID:   event.ReminderID,
			MedicationID: medicationID,
			Medication:   medication,
			Scheduled:    scheduled,
			SnoozedUntil: event.Until,
		})
	}
	return entries, nil
}

func (service *ExportService) BuildCSVRows(ctx context.Context, from *time.Time, to *time.Time) ([]ExportCSVRow, error) {
	events, err := service.load(ctx, from, to)
	if err != nil {
		return nil, err
	}

	rows := make([]ExportCSVRow, 0, len(events))
	for _, event := range events {
		_, medication, scheduled := describeEventReminder(event)
		occurred := event.OccurredAt.In(service.location)
		row := ExportCSVRow{
			Date:       occurred.Format(exportDateLayout),
			Time:       occurred.Format("15:04"),
			Kind:       csvEventLabel(event.Kind),
			Medication: medication,
			ReminderID: event.ReminderID,
			Scheduled:  scheduled,
		}
		if event.Until != nil {
			row.SnoozedUntil = event.Until.In(service.location).Format("2006-01-02 15:04")
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (row ExportCSVRow) Columns() []string {
	return []string{
		row.Date,
		row.Time,
		row.Kind,
		row.Medication,
		fmt.Sprintf("%d", row.ReminderID),
		row.Scheduled,
		row.SnoozedUntil,
	}
}

func describeEventReminder(event models.ReminderEvent) (uint, string, string) {
	if event.Reminder == nil {
		return 0, "", ""
	}
	scheduled := event.Reminder.Time
	if len(scheduled) > 5 {
		scheduled = scheduled[:5]
	}
	if event.Reminder.Medication == nil {
		return event.Reminder.MedicationID, "", scheduled
	}
	return event.Reminder.MedicationID, event.Reminder.Medication.Name, scheduled
}

func csvEventLabel(kind string) string {
	switch kind {
	case models.EventSnoozed:
		return "Snoozed"
	case models.EventAcknowledged:
		return "Taken"
	default:
		return kind
	}
}
