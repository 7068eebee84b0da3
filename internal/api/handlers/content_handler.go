package handlers

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/marketing-agent/internal/publisher"
	"github.com/maheshrc27/marketing-agent/internal/queue"
	"github.com/maheshrc27/marketing-agent/internal/service"
	"github.com/maheshrc27/marketing-agent/internal/transfer"
)

type ContentHandler struct {
	s           service.ContentService
	AsynqClient queue.Enqueuer
}

func NewContentHandler(service service.ContentService, asynqClient queue.Enqueuer) *ContentHandler {
	return &ContentHandler{s: service, AsynqClient: asynqClient}
}

// GenerateContent queues an ad hoc generation. The result shows up in the
// content history.
func (h *ContentHandler) GenerateContent(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.GenerateContent
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}
	if strings.TrimSpace(req.Topic) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Topic is required",
		})
	}
	if _, err := publisher.ParseChannel(req.Channel); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	taskID, err := queue.EnqueueGenerate(h.AsynqClient, queue.GenerateContentPayload{
		UserID:        userID,
		Topic:         req.Topic,
		Channel:       req.Channel,
		ContentType:   req.ContentType,
		GenerateImage: req.GenerateImage,
		GenerateVoice: req.GenerateVoice,
		AutoPublish:   req.AutoPublish,
	})
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error queueing content generation",
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Content wird generiert",
		"task_id": taskID,
	})
}

func (h *ContentHandler) ListContent(c *fiber.Ctx) error {
	userId := GetUserID(c)
	page := c.QueryInt("page", 1)

	history, err := h.s.History(c.Context(), userId, page)
	if err != nil {
		return sendError(c, err)
	}

	return c.JSON(history)
}

func (h *ContentHandler) PublishContent(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.PublishContent
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}
	if req.ContentID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "content_id is required",
		})
	}

	taskID, err := queue.EnqueuePublish(h.AsynqClient, queue.PublishContentPayload{
		UserID:    userID,
		ContentID: req.ContentID,
		Channel:   req.Channel,
	})
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error queueing publication",
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Content wird veröffentlicht",
		"task_id": taskID,
	})
}

func (h *ContentHandler) TestConnection(c *fiber.Ctx) error {
	userId := GetUserID(c)

	status, err := h.s.TestConnection(c.Context(), userId, c.Params("channel"))
	if err != nil {
		return sendError(c, err)
	}

	return c.JSON(status)
}
