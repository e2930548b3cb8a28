package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/medport/internal/services"
)

func (handler *Handler) ListColors(c *fiber.Ctx) error {
	colors, err := handler.colors.List(c.UserContext())
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(mapSlice(colors, newColorResponse))
}

func (handler *Handler) GetColor(c *fiber.Ctx) error {
	colorID, err := parseID(c, "id")
	if err != nil {
		return handler.respondError(c, err)
	}
	color, err := handler.colors.Get(c.UserContext(), colorID)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(newColorResponse(color))
}

func (handler *Handler) CreateColor(c *fiber.Ctx) error {
	var payload colorPayload
	if err := decodeBody(c, &payload); err != nil {
		return handler.respondError(c, err)
	}
	color, err := handler.colors.Create(c.UserContext(), services.ColorInput(payload))
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(newColorResponse(color))
}

func (handler *Handler) ReplaceColor(c *fiber.Ctx) error {
	return handler.updateColor(c, services.ModeReplace)
}

func (handler *Handler) PatchColor(c *fiber.Ctx) error {
	return handler.updateColor(c, services.ModePatch)
}

func (handler *Handler) updateColor(c *fiber.Ctx, mode services.WriteMode) error {
	colorID, err := parseID(c, "id")
	if err != nil {
		return handler.respondError(c, err)
	}
	var payload colorPayload
	if err := decodeBody(c, &payload); err != nil {
		return handler.respondError(c, err)
	}
	color, err := handler.colors.Update(c.UserContext(), colorID, services.ColorInput(payload), mode)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(newColorResponse(color))
}

func (handler *Handler) DeleteColor(c *fiber.Ctx) error {
	colorID, err := parseID(c, "id")
	if err != nil {
		return handler.respondError(c, err)
	}
	if err := handler.colors.Delete(c.UserContext(), colorID); err != nil {
		return handler.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
