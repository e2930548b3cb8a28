package api

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestHealthz(t *testing.T) {
	app := newTestApp(t, "")
	response := app.do(t, http.MethodGet, "/healthz", nil)
	requireStatus(t, response, fiber.StatusOK)

	payload := decodeJSON[map[string]string](t, response)
	if payload["status"] != "ok" {
		t.Fatalf("expected status ok, got %#v", payload)
	}
}

func TestMetricsEndpointServesRegistry(t *testing.T) {
	app := newTestApp(t, "")
	response := app.do(t, http.MethodGet, "/metrics", nil)
	requireStatus(t, response, fiber.StatusOK)

	body, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("read metrics body: %v", err)
	}
	if !strings.Contains(string(body), "medport_invalid_rules_total") {
		t.Fatalf("expected medport metrics in exposition, got %q", body)
	}
}

func TestColorCRUD(t *testing.T) {
	app := newTestApp(t, "")

	response := app.do(t, http.MethodPost, "/api/colors", map[string]any{"red": 10, "green": 20, "blue": 30})
	requireStatus(t, response, fiber.StatusCreated)
	created := decodeJSON[colorResponse](t, response)
	if created.Name != "Untitled" {
		t.Fatalf("expected default color name, got %q", created.Name)
	}

	path := fmt.Sprintf("/api/colors/%d", created.ID)
	response = app.do(t, http.MethodPatch, path, map[string]any{"name": "Sky"})
	requireStatus(t, response, fiber.StatusOK)
	patched := decodeJSON[colorResponse](t, response)
	if patched.Name != "Sky" || patched.Red != 10 || patched.Blue != 30 {
		t.Fatalf("patch changed unspecified fields: %#v", patched)
	}

	response = app.do(t, http.MethodPut, path, map[string]any{"name": "Sky", "red": 1})
	requireStatus(t, response, fiber.StatusBadRequest)
	if body := decodeJSON[apiErrorBody](t, response); body.Field != "green" {
		t.Fatalf("expected green to be required on PUT, got %#v", body)
	}

	response = app.do(t, http.MethodDelete, path, nil)
	requireStatus(t, response, fiber.StatusNoContent)

	response = app.do(t, http.MethodGet, path, nil)
	requireStatus(t, response, fiber.StatusNotFound)
}

func TestColorChannelOutOfRange(t *testing.T) {
	app := newTestApp(t, "")

	response := app.do(t, http.MethodPost, "/api/colors", map[string]any{"red": 256, "green": 0, "blue": 0})
	requireStatus(t, response, fiber.StatusBadRequest)
	if body := decodeJSON[apiErrorBody](t, response); body.Field != "red" {
		t.Fatalf("expected red field error, got %#v", body)
	}
}

func TestMedicationDefaultsAndColorReuse(t *testing.T) {
	app := newTestApp(t, "")

	response := app.do(t, http.MethodPost, "/api/colors", map[string]any{"name": "Mint", "red": 10, "green": 200, "blue": 120})
	requireStatus(t, response, fiber.StatusCreated)
	color := decodeJSON[colorResponse](t, response)

	medication := app.createMedication(t, map[string]any{
		"name":                    "Ibuprofen",
		"frequency":               2,
		"frequency_time_interval": "day",
		"color_id":                color.ID,
	})
	if medication.Dosage != 1 || medication.Unit != "_" || medication.FrequencyTimeInterval != "DAY" {
		t.Fatalf("unexpected defaults: %#v", medication)
	}
	if medication.Color == nil || medication.Color.Name != "Mint" {
		t.Fatalf("expected nested color, got %#v", medication.Color)
	}
	if medication.Reminders == nil {
		t.Fatal("expected reminders to encode as an empty list")
	}

	response = app.do(t, http.MethodPost, "/api/medications", map[string]any{
		"name":      "Paracetamol",
		"frequency": 1,
		"color_id":  color.ID,
	})
	requireStatus(t, response, fiber.StatusBadRequest)
	if body := decodeJSON[apiErrorBody](t, response); body.Field != "color_id" {
		t.Fatalf("expected color_id field error, got %#v", body)
	}

	response = app.do(t, http.MethodPatch, fmt.Sprintf("/api/medications/%d", medication.ID), map[string]any{"color_id": nil})
	requireStatus(t, response, fiber.StatusOK)
	cleared := decodeJSON[medicationResponse](t, response)
	if cleared.ColorID != nil || cleared.Name != "Ibuprofen" {
		t.Fatalf("expected color cleared and name kept, got %#v", cleared)
	}
}

func TestMedicationValidation(t *testing.T) {
	app := newTestApp(t, "")

	tests := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{name: "missing name", body: map[string]any{"frequency": 1}, field: "name"},
		{name: "missing frequency", body: map[string]any{"name": "A"}, field: "frequency"},
		{name: "zero frequency", body: map[string]any{"name": "A", "frequency": 0}, field: "frequency"},
		{name: "unknown interval", body: map[string]any{"name": "A", "frequency": 1, "frequency_time_interval": "MONTH"}, field: "frequency_time_interval"},
		{name: "missing color", body: map[string]any{"name": "A", "frequency": 1, "color_id": 999}, field: "color_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			response := app.do(t, http.MethodPost, "/api/medications", tt.body)
			requireStatus(t, response, fiber.StatusBadRequest)
			if body := decodeJSON[apiErrorBody](t, response); body.Field != tt.field {
				t.Fatalf("expected field %q, got %#v", tt.field, body)
			}
		})
	}
}

func TestMalformedBodyIsRejected(t *testing.T) {
	app := newTestApp(t, "")

	response := app.do(t, http.MethodPost, "/api/colors", `{"red":`)
	requireStatus(t, response, fiber.StatusBadRequest)
	if body := decodeJSON[apiErrorBody](t, response); body.Field != "body" {
		t.Fatalf("expected body field error, got %#v", body)
	}
}

func TestInvalidIDParameter(t *testing.T) {
	app := newTestApp(t, "")

	response := app.do(t, http.MethodGet, "/api/medications/abc", nil)
	requireStatus(t, response, fiber.StatusBadRequest)
}

func TestReminderCRUDAndCascade(t *testing.T) {
	app := newTestApp(t, "")
	medication := app.createMedication(t, map[string]any{"name": "Vitamin D", "frequency": 1})

	reminder := app.createReminder(t, map[string]any{
		"medication_id": medication.ID,
		"time":          "08:30",
		"repeat_days":   []string{"friday", "MONDAY"},
		"starts_on":     "2025-03-10",
	})
	if reminder.Time != "08:30:00" {
		t.Fatalf("expected normalized time, got %q", reminder.Time)
	}
	if len(reminder.RepeatDays) != 2 || reminder.RepeatDays[0] != "MONDAY" {
		t.Fatalf("expected canonical weekday order, got %#v", reminder.RepeatDays)
	}
	if reminder.StartsOn == nil || *reminder.StartsOn != "2025-03-10" {
		t.Fatalf("expected starts_on date, got %#v", reminder.StartsOn)
	}
	if !reminder.Active || reminder.SnoozeDuration != 10 || reminder.RepeatInterval != 1 {
		t.Fatalf("unexpected reminder defaults: %#v", reminder)
	}

	response := app.do(t, http.MethodPatch, fmt.Sprintf("/api/reminders/%d", reminder.ID), map[string]any{"active": false})
	requireStatus(t, response, fiber.StatusOK)
	patched := decodeJSON[reminderResponse](t, response)
	if patched.Active || patched.Time != "08:30:00" {
		t.Fatalf("unexpected patched reminder: %#v", patched)
	}

	response = app.do(t, http.MethodGet, fmt.Sprintf("/api/medications/%d/reminders", medication.ID), nil)
	requireStatus(t, response, fiber.StatusOK)
	if listed := decodeJSON[[]reminderResponse](t, response); len(listed) != 1 {
		t.Fatalf("expected one reminder, got %d", len(listed))
	}

	response = app.do(t, http.MethodDelete, fmt.Sprintf("/api/medications/%d", medication.ID), nil)
	requireStatus(t, response, fiber.StatusNoContent)

	response = app.do(t, http.MethodGet, fmt.Sprintf("/api/reminders/%d", reminder.ID), nil)
	requireStatus(t, response, fiber.StatusNotFound)
}

func TestReminderValidationStatuses(t *testing.T) {
	app := newTestApp(t, "")
	medication := app.createMedication(t, map[string]any{"name": "Iron", "frequency": 1})

	tests := []struct {
		name   string
		body   map[string]any
		status int
		field  string
	}{
		{name: "missing time", body: map[string]any{"medication_id": medication.ID}, status: fiber.StatusBadRequest, field: "time"},
		{name: "bad time", body: map[string]any{"medication_id": medication.ID, "time": "25:00"}, status: fiber.StatusBadRequest, field: "time"},
		{name: "unknown medication", body: map[string]any{"medication_id": 999, "time": "09:00"}, status: fiber.StatusBadRequest, field: "medication_id"},
		{name: "bad weekday", body: map[string]any{"medication_id": medication.ID, "time": "09:00", "repeat_days": []string{"FUNDAY"}}, status: fiber.StatusBadRequest, field: "repeat_days"},
		{name: "bad date", body: map[string]any{"medication_id": medication.ID, "time": "09:00", "ends_on": "12/03/2025"}, status: fiber.StatusBadRequest, field: "ends_on"},
		{name: "ends before start", body: map[string]any{"medication_id": medication.ID, "time": "09:00", "starts_on": "2025-03-10", "ends_on": "2025-03-01"}, status: fiber.StatusUnprocessableEntity, field: "ends_on"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			response := app.do(t, http.MethodPost, "/api/reminders", tt.body)
			requireStatus(t, response, tt.status)
			if body := decodeJSON[apiErrorBody](t, response); body.Field != tt.field {
				t.Fatalf("expected field %q, got %#v", tt.field, body)
			}
		})
	}
}

func TestRemindersByMedicationNotFoundWhenEmpty(t *testing.T) {
	app := newTestApp(t, "")
	medication := app.createMedication(t, map[string]any{"name": "Zinc", "frequency": 1})

	path := fmt.Sprintf("/api/reminders/by-medication/%d", medication.ID)
	requireStatus(t, app.do(t, http.MethodGet, path, nil), fiber.StatusNotFound)

	app.createReminder(t, map[string]any{"medication_id": medication.ID, "time": "07:00"})
	response := app.do(t, http.MethodGet, path, nil)
	requireStatus(t, response, fiber.StatusOK)
	if listed := decodeJSON[[]reminderResponse](t, response); len(listed) != 1 {
		t.Fatalf("expected one reminder, got %d", len(listed))
	}
}

func TestUnknownRouteReturnsJSON404(t *testing.T) {
	app := newTestApp(t, "")
	response := app.do(t, http.MethodGet, "/api/unknown", nil)
	requireStatus(t, response, fiber.StatusNotFound)
	if body := decodeJSON[apiErrorBody](t, response); body.Error == "" {
		t.Fatal("expected error message")
	}
}
