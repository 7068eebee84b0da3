package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/marketing-agent/internal/service"
	"github.com/maheshrc27/marketing-agent/internal/transfer"
)

type ScheduleHandler struct {
	s service.ScheduleService
}

func NewScheduleHandler(service service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{s: service}
}

func (h *ScheduleHandler) CreateSchedule(c *fiber.Ctx) error {
	userId := GetUserID(c)

	var in transfer.ScheduleInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	schedule, warning, err := h.s.Create(c.Context(), userId, &in)
	if err != nil {
		return sendError(c, err)
	}

	res := fiber.Map{"schedule": schedule}
	if warning != "" {
		res["warning"] = warning
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

func (h *ScheduleHandler) ListSchedules(c *fiber.Ctx) error {
	userId := GetUserID(c)

	schedules, err := h.s.List(c.Context(), userId)
	if err != nil {
		return sendError(c, err)
	}

	return c.JSON(schedules)
}

func (h *ScheduleHandler) UpdateSchedule(c *fiber.Ctx) error {
	userId := GetUserID(c)
	scheduleId := c.QueryInt("id", 0)

	var in transfer.ScheduleInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	schedule, err := h.s.Update(c.Context(), userId, int64(scheduleId), &in)
	if err != nil {
		return sendError(c, err)
	}

	return c.JSON(schedule)
}

func (h *ScheduleHandler) ToggleSchedule(c *fiber.Ctx) error {
	userId := GetUserID(c)
	scheduleId := c.QueryInt("id", 0)

	schedule, err := h.s.Toggle(c.Context(), userId, int64(scheduleId))
	if err != nil {
		return sendError(c, err)
	}

	return c.JSON(schedule)
}

func (h *ScheduleHandler) RemoveSchedule(c *fiber.Ctx) error {
	userId := GetUserID(c)
	scheduleId := c.QueryInt("id", 0)

	if err := h.s.Remove(c.Context(), userId, int64(scheduleId)); err != nil {
		return sendError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *ScheduleHandler) RunSchedule(c *fiber.Ctx) error {
	userId := GetUserID(c)
	scheduleId := c.QueryInt("id", 0)

	if err := h.s.RunNow(c.Context(), userId, int64(scheduleId)); err != nil {
		return sendError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Zeitplan wird jetzt ausgeführt",
	})
}

func (h *ScheduleHandler) ValidateCron(c *fiber.Ctx) error {
	var check transfer.CronCheck
	if err := c.BodyParser(&check); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	return c.JSON(h.s.ValidateCron(check.CronExpression, check.Timezone))
}

func (h *ScheduleHandler) CronExamples(c *fiber.Ctx) error {
	return c.JSON(h.s.CronExamples())
}
