package api

import (
	"time"

	"github.com/terraincognita07/medport/internal/models"
	"github.com/terraincognita07/medport/internal/schedule"
	"github.com/terraincognita07/medport/internal/services"
)

type colorResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Red   int    `json:"red"`
	Green int    `json:"green"`
	Blue  int    `json:"blue"`
}

type medicationResponse struct {
	ID                    uint               `json:"id"`
	Name                  string             `json:"name"`
	Image                 string             `json:"image"`
	ColorID               *uint              `json:"color_id"`
	Color                 *colorResponse     `json:"color,omitempty"`
	Dosage                int                `json:"dosage"`
	Unit                  string             `json:"unit"`
	Frequency             int                `json:"frequency"`
	FrequencyTimeInterval string             `json:"frequency_time_interval"`
	Reminders             []reminderResponse `json:"reminders"`
}

type reminderResponse struct {
	ID                 uint       `json:"id"`
	MedicationID       uint       `json:"medication_id"`
	Time               string     `json:"time"`
	RepeatInterval     int        `json:"repeat_interval"`
	RepeatDays         []string   `json:"repeat_days"`
	SpecificDate       *string    `json:"specific_date"`
	StartsOn           *string    `json:"starts_on"`
	EndsOn             *string    `json:"ends_on"`
	Active             bool       `json:"active"`
	SnoozeDuration     int        `json:"snooze_duration"`
	SnoozedUntil       *time.Time `json:"snoozed_until"`
	LastAcknowledgedAt *time.Time `json:"last_acknowledged_at"`
	CreatedAt          time.Time  `json:"created_at"`
}

type reminderEventResponse struct {
	ID         uint       `json:"id"`
	Kind       string     `json:"kind"`
	OccurredAt time.Time  `json:"occurred_at"`
	Until      *time.Time `json:"until,omitempty"`
}

type dueResponse struct {
	ReminderID     uint           `json:"reminder_id"`
	MedicationID   uint           `json:"medication_id"`
	State          schedule.State `json:"state"`
	Occurrence     *time.Time     `json:"occurrence"`
	NextOccurrence *time.Time     `json:"next_occurrence"`
}

func newColorResponse(color models.Color) colorResponse {
	return colorResponse{
		ID:    color.ID,
		Name:  color.Name,
		Red:   color.Red,
		Green: color.Green,
		Blue:  color.Blue,
	}
}

func newMedicationResponse(medication models.Medication) medicationResponse {
	response := medicationResponse{
		ID:                    medication.ID,
		Name:                  medication.Name,
		Image:                 medication.Image,
		ColorID:               medication.ColorID,
		Dosage:                medication.Dosage,
		Unit:                  medication.Unit,
		Frequency:             medication.Frequency,
		FrequencyTimeInterval: medication.FrequencyTimeInterval,
		Reminders:             make([]reminderResponse, 0, len(medication.Reminders)),
	}
	if medication.Color != nil {
		color := newColorResponse(*medication.Color)
		response.Color = &color
	}
	for _, reminder := range medication.Reminders {
		response.Reminders = append(response.Reminders, newReminderResponse(reminder))
	}
	return response
}

func newReminderResponse(reminder models.Reminder) reminderResponse {
	repeatDays := reminder.RepeatDays
	if repeatDays == nil {
		repeatDays = []string{}
	}
	return reminderResponse{
		ID:                 reminder.ID,
		MedicationID:       reminder.MedicationID,
		Time:               reminder.Time,
		RepeatInterval:     reminder.RepeatInterval,
		RepeatDays:         repeatDays,
		SpecificDate:       formatDate(reminder.SpecificDate),
		StartsOn:           formatDate(reminder.StartsOn),
		EndsOn:             formatDate(reminder.EndsOn),
		Active:             reminder.Active,
		SnoozeDuration:     reminder.SnoozeDuration,
		SnoozedUntil:       reminder.SnoozedUntil,
		LastAcknowledgedAt: reminder.LastAcknowledgedAt,
		CreatedAt:          reminder.CreatedAt,
	}
}

func newDueResponse(evaluation services.ReminderEvaluation) dueResponse {
	return dueResponse{
		ReminderID:     evaluation.Reminder.ID,
		MedicationID:   evaluation.Reminder.MedicationID,
		State:          evaluation.State,
		Occurrence:     evaluation.Occurrence,
		NextOccurrence: evaluation.Next,
	}
}

// formatDate renders a stored calendar date; dates are kept at UTC midnight.
func formatDate(value *time.Time) *string {
	if value == nil {
		return nil
	}
	formatted := value.UTC().Format(time.DateOnly)
	return &formatted
}

func mapSlice[T any, R any](values []T, convert func(T) R) []R {
	result := make([]R, 0, len(values))
	for _, value := range values {
		result = append(result, convert(value))
	}
	return result
}
