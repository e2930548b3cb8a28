package api

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/medport/internal/schedule"
	"github.com/terraincognita07/medport/internal/services"
)

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

func fieldError(c *fiber.Ctx, status int, field string, message string) error {
	if field == "" {
		return apiError(c, status, message)
	}
	return c.Status(status).JSON(fiber.Map{"error": message, "field": field})
}

// respondError maps service and engine errors onto HTTP statuses.
func (handler *Handler) respondError(c *fiber.Ctx, err error) error {
	var validationErr *services.ValidationError
	var ruleErr *schedule.InvalidRuleError
	var fiberErr *fiber.Error

	switch {
	case errors.As(err, &validationErr):
		return fieldError(c, fiber.StatusBadRequest, validationErr.Field, validationErr.Message)
	case errors.Is(err, services.ErrNotFound):
		return apiError(c, fiber.StatusNotFound, err.Error())
	case errors.As(err, &ruleErr):
		return fieldError(c, fiber.StatusUnprocessableEntity, ruleErr.Field, ruleErr.Reason)
	case errors.As(err, &fiberErr):
		return apiError(c, fiberErr.Code, fiberErr.Message)
	default:
		handler.logger.Error("request failed", "method", c.Method(), "path", c.Path(), "request_id", requestID(c), "error", err)
		return apiError(c, fiber.StatusInternalServerError, "internal error")
	}
}

func parseID(c *fiber.Ctx, name string) (uint, error) {
	raw := strings.TrimSpace(c.Params(name))
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || value == 0 {
		return 0, &services.ValidationError{Field: name, Message: "must be a positive integer"}
	}
	return uint(value), nil
}

// decodeBody fills payload from a JSON body. An empty body leaves it untouched.
func decodeBody(c *fiber.Ctx, payload any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if !strings.Contains(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEApplicationJSON) {
		c.Request().Header.SetContentType(fiber.MIMEApplicationJSON)
	}
	if err := c.BodyParser(payload); err != nil {
		return &services.ValidationError{Field: "body", Message: "invalid JSON body"}
	}
	return nil
}

func requestID(c *fiber.Ctx) string {
	value, _ := c.Locals(requestIDLocalsKey).(string)
	return value
}
