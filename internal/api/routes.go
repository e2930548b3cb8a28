package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	registerAPIRoutes(app, handler)
}

func registerAPIRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api", handler.BearerAuth)

	colors := api.Group("/colors")
	colors.Get("", handler.ListColors)
	colors.Post("", handler.CreateColor)
	colors.Get("/:id", handler.GetColor)
	colors.Put("/:id", handler.ReplaceColor)
	colors.Patch("/:id", handler.PatchColor)
	colors.Delete("/:id", handler.DeleteColor)

	medications := api.Group("/medications")
	medications.Get("", handler.ListMedications)
	medications.Post("", handler.CreateMedication)
	medications.Get("/:id", handler.GetMedication)
	medications.Put("/:id", handler.ReplaceMedication)
	medications.Patch("/:id", handler.PatchMedication)
	medications.Delete("/:id", handler.DeleteMedication)
	medications.Get("/:id/reminders", handler.ListMedicationReminders)

	reminders := api.Group("/reminders")
	reminders.Get("", handler.ListReminders)
	reminders.Post("", handler.CreateReminder)
	reminders.Get("/by-medication/:id", handler.RemindersByMedication)
	reminders.Get("/:id", handler.GetReminder)
	reminders.Put("/:id", handler.ReplaceReminder)
	reminders.Patch("/:id", handler.PatchReminder)
	reminders.Delete("/:id", handler.DeleteReminder)
	reminders.Get("/:id/events", handler.ListReminderEvents)
	reminders.Get("/:id/occurrences", handler.ListReminderOccurrences)
	reminders.Post("/:id/snooze", handler.SnoozeReminder)
	reminders.Post("/:id/acknowledge", handler.AcknowledgeReminder)

	api.Get("/due", handler.ListDue)

	api.Get("/stats", handler.GetMedicationStats)

	export := api.Group("/export")
	export.Get("/summary", handler.ExportSummary)
	export.Get("/csv", handler.ExportCSV)
	export.Get("/json", handler.ExportJSON)
}
