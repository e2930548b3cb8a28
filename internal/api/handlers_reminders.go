package api

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/medport/internal/services"
)

func (handler *Handler) ListReminders(c *fiber.Ctx) error {
	reminders, err := handler.reminders.List(c.UserContext())
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(mapSlice(reminders, newReminderResponse))
}

func (handler *Handler) GetReminder(c *fiber.Ctx) error {
	reminderID, err := parseID(c, "id")
	if err != nil {
		return handler.respondError(c, err)
	}
	reminder, err := handler.reminders.Get(c.UserContext(), reminderID)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(newReminderResponse(reminder))
}

// RemindersByMedication answers 404 when the medication has no reminders.
func (handler *Handler) RemindersByMedication(c *fiber.Ctx) error {
	medicationID, err := parseID(c, "id")
	if err != nil {
		return handler.respondError(c, err)
	}
	reminders, err := handler.reminders.ListByMedication(c.UserContext(), medicationID)
	if err != nil {
		return handler.respondError(c, err)
	}
	if len(reminders) == 0 {
		return apiError(c, fiber.StatusNotFound, "no reminders found for this medication")
	}
	return c.JSON(mapSlice(reminders, newReminderResponse))
}

func (handler *Handler) CreateReminder(c *fiber.Ctx) error {
	var payload reminderPayload
	if err := decodeBody(c, &payload); err != nil {
		return handler.respondError(c, err)
	}
	reminder, err := handler.reminders.Create(c.UserContext(), services.ReminderInput(payload))
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(newReminderResponse(reminder))
}

func (handler *Handler) ReplaceReminder(c *fiber.Ctx) error {
	return handler.updateReminder(c, services.ModeReplace)
}

func (handler *Handler) PatchReminder(c *fiber.Ctx) error {
	return handler.updateReminder(c, services.ModePatch)
}

func (handler *Handler) updateReminder(c *fiber.Ctx, mode services.WriteMode) error {
	reminderID, err := parseID(c, "id")
	if err != nil {
		return handler.respondError(c, err)
	}
	var payload reminderPayload
	if err := decodeBody(c, &payload); err != nil {
		return handler.respondError(c, err)
	}
	reminder, err := handler.reminders.Update(c.UserContext(), reminderID, services.ReminderInput(payload), mode)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(newReminderResponse(reminder))
}

func (handler *Handler) DeleteReminder(c *fiber.Ctx) error {
	reminderID, err := parseID(c, "id")
	if err != nil {
		return handler.respondError(c, err)
	}
	if err := handler.reminders.Delete(c.UserContext(), reminderID); err != nil {
		return handler.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (handler *Handler) ListReminderEvents(c *fiber.Ctx) error {
	reminderID, err := parseID(c, "id")
	if err != nil {
		return handler.respondError(c, err)
	}
	events, err := handler.reminders.Events(c.UserContext(), reminderID)
	if err != nil {
		return handler.respondError(c, err)
	}
	response := make([]reminderEventResponse, 0, len(events))
	for _, event := range events {
		response = append(response, reminderEventResponse{
			ID:         event.ID,
			Kind:       event.Kind,
			OccurredAt: event.OccurredAt,
			Until:      event.Until,
		})
	}
	return c.JSON(response)
}

// ListReminderOccurrences previews upcoming firing times from ?from (now by default).
func (handler *Handler) ListReminderOccurrences(c *fiber.Ctx) error {
	reminderID, err := parseID(c, "id")
	if err != nil {
		return handler.respondError(c, err)
	}
	from, err := parseInstantQuery(c, "from", handler.clock.Now())
	if err != nil {
		return handler.respondError(c, err)
	}
	limit := defaultOccurrenceLimit
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return handler.respondError(c, &services.ValidationError{Field: "limit", Message: "must be an integer"})
		}
		limit = parsed
	}

	occurrences, err := handler.reminders.Occurrences(c.UserContext(), reminderID, from, limit)
	if err != nil {
		return handler.respondError(c, err)
	}
	if occurrences == nil {
		occurrences = []time.Time{}
	}
	return c.JSON(fiber.Map{"reminder_id": reminderID, "occurrences": occurrences})
}

func (handler *Handler) SnoozeReminder(c *fiber.Ctx) error {
	reminderID, err := parseID(c, "id")
	if err != nil {
		return handler.respondError(c, err)
	}
	var payload snoozePayload
	if err := decodeBody(c, &payload); err != nil {
		return handler.respondError(c, err)
	}
	reminder, err := handler.scheduler.Snooze(c.UserContext(), reminderID, payload.Until)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(newReminderResponse(reminder))
}

func (handler *Handler) AcknowledgeReminder(c *fiber.Ctx) error {
	reminderID, err := parseID(c, "id")
	if err != nil {
		return handler.respondError(c, err)
	}
	var payload acknowledgePayload
	if err := decodeBody(c, &payload); err != nil {
		return handler.respondError(c, err)
	}
	reminder, err := handler.scheduler.Acknowledge(c.UserContext(), reminderID, payload.FiredAt)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(newReminderResponse(reminder))
}
