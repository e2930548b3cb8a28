package api

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/medport/internal/services"
)

func (handler *Handler) exportRange(c *fiber.Ctx) (*time.Time, *time.Time, error) {
	return services.ParseExportRange(c.Query("from"), c.Query("to"), handler.location)
}

func (handler *Handler) ExportSummary(c *fiber.Ctx) error {
	from, to, err := handler.exportRange(c)
	if err != nil {
		return handler.respondError(c, err)
	}

	summary, err := handler.exports.BuildSummary(c.UserContext(), from, to)
	if err != nil {
		return handler.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"total_events": summary.TotalEvents,
		"has_data":     summary.HasData,
		"date_from":    summary.DateFrom,
		"date_to":      summary.DateTo,
	})
}

func (handler *Handler) ExportCSV(c *fiber.Ctx) error {
	from, to, err := handler.exportRange(c)
	if err != nil {
		return handler.respondError(c, err)
	}

	rows, err := handler.exports.BuildCSVRows(c.UserContext(), from, to)
	if err != nil {
		return handler.respondError(c, err)
	}

	var output bytes.Buffer
	writer := csv.NewWriter(&output)
	if err := writer.Write(services.ExportCSVHeaders); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to build export")
	}
	for _, row := range rows {
		if err := writer.Write(row.Columns()); err != nil {
			return apiError(c, fiber.StatusInternalServerError, "failed to build export")
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to build export")
	}

	setExportAttachmentHeaders(c, "text/csv", buildExportFilename(handler.clock.Now().In(handler.location), "csv"))
	return c.Send(output.Bytes())
}

func (handler *Handler) ExportJSON(c *fiber.Ctx) error {
	from, to, err := handler.exportRange(c)
	if err != nil {
		return handler.respondError(c, err)
	}

	entries, err := handler.exports.BuildJSONEntries(c.UserContext(), from, to)
	if err != nil {
		return handler.respondError(c, err)
	}

	now := handler.clock.Now().In(handler.location)
	serialized, err := json.MarshalIndent(fiber.Map{
		"exported_at": now.Format(time.RFC3339),
		"events":      entries,
	}, "", "  ")
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to build export")
	}

	setExportAttachmentHeaders(c, fiber.MIMEApplicationJSON, buildExportFilename(now, "json"))
	return c.Send(serialized)
}

func setExportAttachmentHeaders(c *fiber.Ctx, contentType string, filename string) {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
}

func buildExportFilename(now time.Time, extension string) string {
	return fmt.Sprintf("medport-history-%s.%s", now.Format("2006-01-02"), extension)
}
