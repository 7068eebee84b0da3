package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/marketing-agent/configs"
	"github.com/maheshrc27/marketing-agent/internal/service"
	"github.com/maheshrc27/marketing-agent/internal/transfer"
	"github.com/maheshrc27/marketing-agent/pkg/utils"
)

const sessionDuration = 24 * time.Hour

type AuthHandler struct {
	s   service.AuthService
	cfg config.Config
}

func NewAuthHandler(cfg config.Config, service service.AuthService) *AuthHandler {
	return &AuthHandler{s: service, cfg: cfg}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var creds transfer.Credentials
	if err := c.BodyParser(&creds); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	userID, err := h.s.Register(c.Context(), creds.Email, creds.Password)
	if err != nil {
		return sendError(c, err)
	}

	if err := h.setSession(c, userID); err != nil {
		return sendError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user_id": userID,
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var creds transfer.Credentials
	if err := c.BodyParser(&creds); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	userID, err := h.s.Login(c.Context(), creds.Email, creds.Password)
	if err != nil {
		return sendError(c, err)
	}

	if err := h.setSession(c, userID); err != nil {
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{
		"user_id": userID,
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	clearSession(c, h.cfg.CookieName)
	return c.SendStatus(fiber.StatusOK)
}

func (h *AuthHandler) setSession(c *fiber.Ctx, userID int64) error {
	token, err := utils.GenerateToken(h.cfg.SecretKey, userID, sessionDuration)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    token,
		HTTPOnly: true,
		Secure:   false,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
		Expires:  time.Now().Add(sessionDuration),
	})
	return nil
}

func clearSession(c *fiber.Ctx, cookieName string) {
	c.Cookie(&fiber.Cookie{
		Name:   cookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}
