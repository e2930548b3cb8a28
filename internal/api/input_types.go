package api

import (
	"time"

	"github.com/terraincognita07/medport/internal/services"
)

// Payloads mirror the service inputs field for field so they convert directly.

type colorPayload struct {
	Name  *string `json:"name"`
	Red   *int    `json:"red"`
	Green *int    `json:"green"`
	Blue  *int    `json:"blue"`
}

type medicationPayload struct {
	Name                  *string                 `json:"name"`
	Image                 *string                 `json:"image"`
	ColorID               services.Nullable[uint] `json:"color_id"`
	Dosage                *int                    `json:"dosage"`
	Unit                  *string                 `json:"unit"`
	Frequency             *int                    `json:"frequency"`
	FrequencyTimeInterval *string                 `json:"frequency_time_interval"`
}

type reminderPayload struct {
	MedicationID   *uint                       `json:"medication_id"`
	Time           *string                     `json:"time"`
	RepeatInterval *int                        `json:"repeat_interval"`
	RepeatDays     services.Nullable[[]string] `json:"repeat_days"`
	SpecificDate   services.Nullable[string]   `json:"specific_date"`
	StartsOn       services.Nullable[string]   `json:"starts_on"`
	EndsOn         services.Nullable[string]   `json:"ends_on"`
	Active         *bool                       `json:"active"`
	SnoozeDuration *int                        `json:"snooze_duration"`
}

type snoozePayload struct {
	Until *time.Time `json:"until"`
}

type acknowledgePayload struct {
	FiredAt *time.Time `json:"fired_at"`
}
