package api

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/medport/internal/schedule"
	"github.com/terraincognita07/medport/internal/services"
)

// ListDue evaluates active reminders at ?at. Reminders whose rule cannot be
// built are left out, logged and counted in X-Invalid-Rules.
func (handler *Handler) ListDue(c *fiber.Ctx) error {
	at, err := parseInstantQuery(c, "at", handler.scheduler.Now())
	if err != nil {
		return handler.respondError(c, err)
	}

	var medicationID *uint
	if raw := strings.TrimSpace(c.Query("medication_id")); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || parsed == 0 {
			return handler.respondError(c, &services.ValidationError{Field: "medication_id", Message: "must be a positive integer"})
		}
		value := uint(parsed)
		medicationID = &value
	}

	includeAll := c.QueryBool("all", false)

	var evaluations []services.ReminderEvaluation
	var evalErr error
	if includeAll {
		evaluations, evalErr = handler.scheduler.Evaluate(c.UserContext(), at, medicationID)
	} else {
		evaluations, evalErr = handler.scheduler.DueReminders(c.UserContext(), at, medicationID)
	}
	if evalErr != nil {
		var ruleErr *schedule.InvalidRuleError
		if evaluations == nil || !errors.As(evalErr, &ruleErr) {
			return handler.respondError(c, evalErr)
		}
		invalid := countJoined(evalErr)
		handler.logger.Warn("skipped reminders with invalid rules", "count", invalid, "request_id", requestID(c), "error", evalErr)
		c.Set(invalidRulesCountHeader, strconv.Itoa(invalid))
	}

	return c.JSON(mapSlice(evaluations, newDueResponse))
}

func parseInstantQuery(c *fiber.Ctx, name string, fallback time.Time) (time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return fallback, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, &services.ValidationError{Field: name, Message: "must be an RFC 3339 timestamp"}
	}
	return parsed, nil
}

func countJoined(err error) int {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return len(joined.Unwrap())
	}
	return 1
}
