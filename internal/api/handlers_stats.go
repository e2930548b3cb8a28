package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/medport/internal/services"
)

type medicationStatsResponse struct {
	MedicationID uint       `json:"medication_id"`
	Name         string     `json:"name"`
	Taken        int        `json:"taken"`
	Snoozed      int        `json:"snoozed"`
	LastTakenAt  *time.Time `json:"last_taken_at"`
}

// GetMedicationStats summarizes taken and snoozed counts per medication over
// the optional ?from/?to date range.
func (handler *Handler) GetMedicationStats(c *fiber.Ctx) error {
	from, to, err := handler.exportRange(c)
	if err != nil {
		return handler.respondError(c, err)
	}

	stats, err := handler.stats.BuildMedicationStats(c.UserContext(), from, to)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(mapSlice(stats, func(value services.MedicationStats) medicationStatsResponse {
		return medicationStatsResponse(value)
	}))
}
