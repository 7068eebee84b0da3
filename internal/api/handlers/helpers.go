package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/marketing-agent/internal/publisher"
	"github.com/maheshrc27/marketing-agent/internal/service"
)

func GetUserID(c *fiber.Ctx) int64 {
	raw, _ := c.Locals("user_id").(string)
	userID, _ := strconv.ParseInt(raw, 10, 64)
	return userID
}

// errorStatus maps service errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrAIKeyMissing),
		errors.Is(err, service.ErrApiKeyLimit),
		errors.Is(err, publisher.ErrNotConfigured):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case errors.Is(err, service.ErrEmailTaken), errors.Is(err, service.ErrNotScheduled):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func sendError(c *fiber.Ctx, err error) error {
	status := errorStatus(err)
	message := err.Error()
	if status == fiber.StatusInternalServerError {
		message = "something went wrong"
	}
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}
