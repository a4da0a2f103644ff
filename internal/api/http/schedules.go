package httpapi

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/manikanta7cheruku/agent-fetch/internal/schedules"
)

type scheduleCreateRequest struct {
	Name      string  `json:"name"`
	TimeOfDay string  `json:"time_of_day" validate:"omitempty,datetime=15:04"`
	City      *string `json:"city"`
	Coin      *string `json:"coin"`
}

type enabledRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

func registerScheduleRoutes(api fiber.Router, deps Deps) {
	api.Get("/schedules", func(c *fiber.Ctx) error {
		return c.JSON(deps.Schedules.List())
	})

	api.Post("/schedules", func(c *fiber.Ctx) error {
		var req scheduleCreateRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "time_of_day must be in HH:MM format")
		}

		if req.TimeOfDay == "" {
			req.TimeOfDay = "08:00"
		}
		city := derefTrim(req.City)
		coin := strings.ToLower(derefTrim(req.Coin))

		sched, err := deps.Schedules.Create(strings.TrimSpace(req.Name), req.TimeOfDay, city, coin)
		if err != nil {
			if errors.Is(err, schedules.ErrMissingTarget) {
				return fiber.NewError(fiber.StatusBadRequest, "At least one of city or coin must be provided for a schedule.")
			}
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(sched)
	})

	api.Patch("/schedules/:id", func(c *fiber.Ctx) error {
		var req enabledRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "enabled is required")
		}

		id := c.Params("id")
		sched, err := deps.Schedules.SetEnabled(id, *req.Enabled)
		if err != nil {
			if errors.Is(err, schedules.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Schedule "+id+" not found")
			}
			return err
		}
		return c.JSON(sched)
	})

	api.Delete("/schedules/:id", func(c *fiber.Ctx) error {
		id := c.Params("id")
		if err := deps.Schedules.Delete(id); err != nil {
			if errors.Is(err, schedules.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Schedule "+id+" not found")
			}
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func derefTrim(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
