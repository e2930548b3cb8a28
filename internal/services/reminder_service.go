package services

import (
	"context"
	"fmt"
	"time"

	"github.com/terraincognita07/medport/internal/clock"
	"github.com/terraincognita07/medport/internal/models"
	"github.com/terraincognita07/medport/internal/schedule"
)

const maxUpcomingOccurrences = 100

type ReminderRepository interface {
	List(ctx context.Context) ([]models.Reminder, error)
	ListActive(ctx context.Context, medicationID *uint) ([]models.Reminder, error)
	ListByMedication(ctx context.Context, medicationID uint) ([]models.Reminder, error)
	FindByID(ctx context.Context, reminderID uint) (models.Reminder, error)
	Create(ctx context.Context, reminder *models.Reminder) error
	Save(ctx context.Context, reminder *models.Reminder) error
	Delete(ctx context.Context, reminderID uint) error
	UpdateSnooze(ctx context.Context, reminderID uint, at time.Time, until time.Time) error
	UpdateAcknowledged(ctx context.Context, reminderID uint, firedAt time.Time) error
	ListEvents(ctx context.Context, reminderID uint) ([]models.ReminderEvent, error)
}

type ReminderService struct {
	reminders   ReminderRepository
	medications MedicationRepository
	clock       clock.Clock
	location    *time.Location
}

func NewReminderService(reminders ReminderRepository, medications MedicationRepository, now clock.Clock, location *time.Location) *ReminderService {
	if location == nil {
		location = time.UTC
	}
	return &ReminderService{
		reminders:   reminders,
		medications: medications,
		clock:       now,
		location:    location,
	}
}

func (service *ReminderService) List(ctx context.Context) ([]models.Reminder, error) {
	reminders, err := service.reminders.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	return reminders, nil
}

func (service *ReminderService) Get(ctx context.Context, reminderID uint) (models.Reminder, error) {
	reminder, err := service.reminders.FindByID(ctx, reminderID)
	if err != nil {
		return models.Reminder{}, notFoundOr(err, "reminder", reminderID)
	}
	return reminder, nil
}

// ListByMedication returns the reminders of an existing medication.
func (service *ReminderService) ListByMedication(ctx context.Context, medicationID uint) ([]models.Reminder, error) {
	if _, err := service.medications.FindByID(ctx, medicationID); err != nil {
		return nil, notFoundOr(err, "medication", medicationID)
	}
	reminders, err := service.reminders.ListByMedication(ctx, medicationID)
	if err != nil {
		return nil, fmt.Errorf("list reminders of medication %d: %w", medicationID, err)
	}
	return reminders, nil
}

func (service *ReminderService) Create(ctx context.Context, input ReminderInput) (models.Reminder, error) {
	reminder := models.Reminder{
		RepeatInterval: models.DefaultRepeatInterval,
		Active:         true,
		SnoozeDuration: models.DefaultSnoozeMinutes,
		CreatedAt:      service.clock.Now(),
	}
	if err := service.apply(ctx, &reminder, input, ModeCreate); err != nil {
		return models.Reminder{}, err
	}
	if err := service.reminders.Create(ctx, &reminder); err != nil {
		return models.Reminder{}, fmt.Errorf("create reminder: %w", err)
	}
	return reminder, nil
}

func (service *ReminderService) Update(ctx context.Context, reminderID uint, input ReminderInput, mode WriteMode) (models.Reminder, error) {
	reminder, err := service.Get(ctx, reminderID)
	if err != nil {
		return models.Reminder{}, err
	}
	if err := service.apply(ctx, &reminder, input, mode); err != nil {
		return models.Reminder{}, err
	}
	if err := service.reminders.Save(ctx, &reminder); err != nil {
		return models.Reminder{}, fmt.Errorf("save reminder %d: %w", reminderID, err)
	}
	return reminder, nil
}

func (service *ReminderService) Delete(ctx context.Context, reminderID uint) error {
	return notFoundOr(service.reminders.Delete(ctx, reminderID), "reminder", reminderID)
}

func (service *ReminderService) Events(ctx context.Context, reminderID uint) ([]models.ReminderEvent, error) {
	if _, err := service.Get(ctx, reminderID); err != nil {
		return nil, err
	}
	events, err := service.reminders.ListEvents(ctx, reminderID)
	if err != nil {
		return nil, fmt.Errorf("list events of reminder %d: %w", reminderID, err)
	}
	return events, nil
}

// Occurrences lists up to limit scheduled times of the reminder at or after from.
func (service *ReminderService) Occurrences(ctx context.Context, reminderID uint, from time.Time, limit int) ([]time.Time, error) {
	if limit <= 0 || limit > maxUpcomingOccurrences {
		return nil, invalidField("limit", "must be between 1 and %d", maxUpcomingOccurrences)
	}
	reminder, err := service.Get(ctx, reminderID)
	if err != nil {
		return nil, err
	}
	rule, err := service.ruleFor(ctx, reminder)
	if err != nil {
		return nil, err
	}
	return rule.Upcoming(from, limit), nil
}

func (service *ReminderService) ruleFor(ctx context.Context, reminder models.Reminder) (schedule.Rule, error) {
	var interval string
	if reminder.Medication != nil {
		interval = reminder.Medication.FrequencyTimeInterval
	} else {
		medication, err := service.medications.FindByID(ctx, reminder.MedicationID)
		if err != nil {
			return schedule.Rule{}, notFoundOr(err, "medication", reminder.MedicationID)
		}
		interval = medication.FrequencyTimeInterval
	}
	return schedule.RuleFor(reminder, interval, service.location)
}

func (service *ReminderService) apply(ctx context.Context, reminder *models.Reminder, input ReminderInput, mode WriteMode) error {
	if input.MedicationID != nil {
		medication, err := service.medications.FindByID(ctx, *input.MedicationID)
		if err != nil {
			if isNotFound(notFoundOr(err, "medication", *input.MedicationID)) {
				return invalidField("medication_id", "medication %d does not exist", *input.MedicationID)
			}
			return fmt.Errorf("load medication %d: %w", *input.MedicationID, err)
		}
		reminder.MedicationID = medication.ID
		reminder.Medication = &medication
	} else if mode.requiresAll() {
		return invalidField("medication_id", "is required")
	}

	if input.Time != nil {
		at, err := schedule.ParseTimeOfDay(*input.Time)
		if err != nil {
			return invalidField("time", "%v", err)
		}
		reminder.Time = at.String()
	} else if mode.requiresAll() {
		return invalidField("time", "is required")
	}

	if input.RepeatInterval != nil {
		if *input.RepeatInterval <= 0 {
			return invalidField("repeat_interval", "must be positive")
		}
		if *input.RepeatInterval > schedule.MaxInterval {
			return invalidField("repeat_interval", "must be at most %d", schedule.MaxInterval)
		}
		reminder.RepeatInterval = *input.RepeatInterval
	}

	if input.RepeatDays.Set {
		var names []string
		if input.RepeatDays.Value != nil {
			canonical, err := schedule.CanonicalWeekdays(*input.RepeatDays.Value)
			if err != nil {
				return invalidField("repeat_days", "%v", err)
			}
			names = canonical
		}
		if len(names) == 0 {
			names = nil
		}
		reminder.RepeatDays = names
	}

	dates := []struct {
		field  string
		value  Nullable[string]
		target **time.Time
	}{
		{field: "specific_date", value: input.SpecificDate, target: &reminder.SpecificDate},
		{field: "starts_on", value: input.StartsOn, target: &reminder.StartsOn},
		{field: "ends_on", value: input.EndsOn, target: &reminder.EndsOn},
	}
	for _, date := range dates {
		if !date.value.Set {
			continue
		}
		if date.value.Value == nil {
			*date.target = nil
			continue
		}
		parsed, err := ParseDate(*date.value.Value)
		if err != nil {
			return invalidField(date.field, "must be a YYYY-MM-DD date")
		}
		*date.target = &parsed
	}

	if input.Active != nil {
		reminder.Active = *input.Active
	}

	if input.SnoozeDuration != nil {
		if *input.SnoozeDuration < 1 {
			return invalidField("snooze_duration", "must be at least 1 minute")
		}
		reminder.SnoozeDuration = *input.SnoozeDuration
	}

	if _, err := service.ruleFor(ctx, *reminder); err != nil {
		return err
	}
	return nil
}

// ParseDate reads an ISO-8601 calendar date and stores it at UTC midnight.
func ParseDate(raw string) (time.Time, error) {
	parsed, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC), nil
}
