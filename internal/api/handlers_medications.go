package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/medport/internal/services"
)

func (handler *Handler) ListMedications(c *fiber.Ctx) error {
	medications, err := handler.medications.List(c.UserContext())
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(mapSlice(medications, newMedicationResponse))
}

func (handler *Handler) GetMedication(c *fiber.Ctx) error {
	medicationID, err := parseID(c, "id")
	if err != nil {
		return handler.respondError(c, err)
	}
	medication, err := handler.medications.Get(c.UserContext(), medicationID)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(newMedicationResponse(medication))
}

func (handler *Handler) CreateMedication(c *fiber.Ctx) error {
	var payload medicationPayload
	if err := decodeBody(c, &payload); err != nil {
		return handler.respondError(c, err)
	}
	medication, err := handler.medications.Create(c.UserContext(), services.MedicationInput(payload))
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(newMedicationResponse(medication))
}

func (handler *Handler) ReplaceMedication(c *fiber.Ctx) error {
	return handler.updateMedication(c, services.ModeReplace)
}

func (handler *Handler) PatchMedication(c *fiber.Ctx) error {
	return handler.updateMedication(c, services.ModePatch)
}

func (handler *Handler) updateMedication(c *fiber.Ctx, mode services.WriteMode) error {
	medicationID, err := parseID(c, "id")
	if err != nil {
		return handler.respondError(c, err)
	}
	var payload medicationPayload
	if err := decodeBody(c, &payload); err != nil {
		return handler.respondError(c, err)
	}
	medication, err := handler.medications.Update(c.UserContext(), medicationID, services.MedicationInput(payload), mode)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(newMedicationResponse(medication))
}

func (handler *Handler) DeleteMedication(c *fiber.Ctx) error {
	medicationID, err := parseID(c, "id")
	if err != nil {
		return handler.respondError(c, err)
	}
	if err := handler.medications.Delete(c.UserContext(), medicationID); err != nil {
		return handler.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListMedicationReminders returns the reminders of one medication, empty
// when it has none.
func (handler *Handler) ListMedicationReminders(c *fiber.Ctx) error {
	medicationID, err := parseID(c, "id")
	if err != nil {
		return handler.respondError(c, err)
	}
	reminders, err := handler.reminders.ListByMedication(c.UserContext(), medicationID)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(mapSlice(reminders, newReminderResponse))
}
