package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/marketing-agent/internal/service"
	"github.com/maheshrc27/marketing-agent/internal/transfer"
)

type SettingsHandler struct {
	s service.SettingsService
}

func NewSettingsHandler(service service.SettingsService) *SettingsHandler {
	return &SettingsHandler{s: service}
}

func (h *SettingsHandler) Channels(c *fiber.Ctx) error {
	userId := GetUserID(c)

	statuses, err := h.s.ChannelStatus(c.Context(), userId)
	if err != nil {
		return sendError(c, err)
	}

	return c.JSON(statuses)
}

func (h *SettingsHandler) UpdateCredentials(c *fiber.Ctx) error {
	userId := GetUserID(c)

	var update transfer.CredentialsUpdate
	if err := c.BodyParser(&update); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	if err := h.s.UpdateCredentials(c.Context(), userId, &update); err != nil {
		return sendError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Zugangsdaten gespeichert",
	})
}

func (h *SettingsHandler) UpdateAISettings(c *fiber.Ctx) error {
	userId := GetUserID(c)

	var update transfer.AISettingsUpdate
	if err := c.BodyParser(&update); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	if err := h.s.UpdateAISettings(c.Context(), userId, &update); err != nil {
		return sendError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "KI-Einstellungen gespeichert",
	})
}
