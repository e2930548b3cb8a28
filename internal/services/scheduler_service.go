package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/terraincognita07/medport/internal/clock"
	"github.com/terraincognita07/medport/internal/metrics"
	"github.com/terraincognita07/medport/internal/models"
	"github.com/terraincognita07/medport/internal/schedule"
)

// ReminderStore is the slice of reminder persistence the scheduler reads
// and writes.
type ReminderStore interface {
	ListActive(ctx context.Context, medicationID *uint) ([]models.Reminder, error)
	FindByID(ctx context.Context, reminderID uint) (models.Reminder, error)
	UpdateSnooze(ctx context.Context, reminderID uint, at time.Time, until time.Time) error
	UpdateAcknowledged(ctx context.Context, reminderID uint, firedAt time.Time) error
}

type ReminderEvaluation struct {
	Reminder   models.Reminder
	State      schedule.State
	Occurrence *time.Time
	Next       *time.Time
}

type SchedulerService struct {
	store    ReminderStore
	clock    clock.Clock
	location *time.Location
	metrics  *metrics.Metrics
}

func NewSchedulerService(store ReminderStore, now clock.Clock, location *time.Location, m *metrics.Metrics) *SchedulerService {
	if location == nil {
		location = time.UTC
	}
	return &SchedulerService{store: store, clock: now, location: location, metrics: m}
}

func (service *SchedulerService) Now() time.Time {
	return service.clock.Now()
}

// Evaluate checks every active reminder, optionally of one medication, at
// the given instant. Reminders with a broken schedule are skipped and
// reported together in the returned error next to the valid results.
func (service *SchedulerService) Evaluate(ctx context.Context, at time.Time, medicationID *uint) ([]ReminderEvaluation, error) {
	reminders, err := service.store.ListActive(ctx, medicationID)
	if err != nil {
		return nil, fmt.Errorf("list active reminders: %w", err)
	}

	results := make([]ReminderEvaluation, 0, len(reminders))
	var invalid []error
	for _, reminder := range reminders {
		interval := models.IntervalDay
		if reminder.Medication != nil {
			interval = reminder.Medication.FrequencyTimeInterval
		}
		rule, err := schedule.RuleFor(reminder, interval, service.location)
		if err != nil {
			service.metrics.ObserveInvalidRule()
			invalid = append(invalid, err)
			continue
		}

		evaluation := schedule.Evaluate(rule, schedule.StatusFor(reminder), at)
		service.metrics.ObserveEvaluation(evaluation.State.String())
		results = append(results, ReminderEvaluation{
			Reminder:   reminder,
			State:      evaluation.State,
			Occurrence: evaluation.Occurrence,
			Next:       evaluation.Next,
		})
	}

	sortEvaluations(results)
	return results, errors.Join(invalid...)
}

// DueReminders is Evaluate narrowed to Due and Snoozed reminders.
func (service *SchedulerService) DueReminders(ctx context.Context, at time.Time, medicationID *uint) ([]ReminderEvaluation, error) {
	results, err := service.Evaluate(ctx, at, medicationID)
	var invalid *schedule.InvalidRuleError
	if err != nil && !errors.As(err, &invalid) {
		return nil, err
	}
	due := make([]ReminderEvaluation, 0, len(results))
	for _, result := range results {
		if result.State == schedule.Due || result.State == schedule.Snoozed {
			due = append(due, result)
		}
	}
	return due, err
}

// Snooze silences the reminder until the given instant, or for its snooze
// duration when until is nil.
func (service *SchedulerService) Snooze(ctx context.Context, reminderID uint, until *time.Time) (models.Reminder, error) {
	reminder, err := service.store.FindByID(ctx, reminderID)
	if err != nil {
		return models.Reminder{}, notFoundOr(err, "reminder", reminderID)
	}

	now := service.clock.Now()
	deadline := now.Add(time.Duration(reminder.SnoozeDuration) * time.Minute)
	if until != nil {
		deadline = *until
	}
	if !deadline.After(now) {
		return models.Reminder{}, invalidField("until", "must be in the future")
	}

	if err := service.store.UpdateSnooze(ctx, reminderID, now, deadline); err != nil {
		return models.Reminder{}, notFoundOr(err, "reminder", reminderID)
	}
	service.metrics.ObserveReminderAction(models.EventSnoozed)
	return service.reload(ctx, reminderID)
}

// Acknowledge records that the reminder fired at firedAt (now when nil);
// the occurrence it covers is no longer due.
func (service *SchedulerService) Acknowledge(ctx context.Context, reminderID uint, firedAt *time.Time) (models.Reminder, error) {
	if _, err := service.store.FindByID(ctx, reminderID); err != nil {
		return models.Reminder{}, notFoundOr(err, "reminder", reminderID)
	}

	at := service.clock.Now()
	if firedAt != nil {
		at = *firedAt
	}
	if err := service.store.UpdateAcknowledged(ctx, reminderID, at); err != nil {
		return models.Reminder{}, notFoundOr(err, "reminder", reminderID)
	}
	service.metrics.ObserveReminderAction(models.EventAcknowledged)
	return service.reload(ctx, reminderID)
}

func (service *SchedulerService) reload(ctx context.Context, reminderID uint) (models.Reminder, error) {
	reminder, err := service.store.FindByID(ctx, reminderID)
	if err != nil {
		return models.Reminder{}, notFoundOr(err, "reminder", reminderID)
	}
	return reminder, nil
}

func sortEvaluations(results []ReminderEvaluation) {
	sort.SliceStable(results, func(i, j int) bool {
		left, right := results[i].Reminder, results[j].Reminder
		if left.MedicationID != right.MedicationID {
			return left.MedicationID < right.MedicationID
		}
		if left.Time != right.Time {
			return left.Time < right.Time
		}
		return left.ID < right.ID
	})
}
