package httpapi

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/manikanta7cheruku/agent-fetch/internal/alerts"
)

type alertCreateRequest struct {
	Name      string   `json:"name"`
	Type      string   `json:"type" validate:"omitempty,oneof=crypto_change weather_temp"`
	Operator  string   `json:"operator" validate:"omitempty,oneof=> <"`
	Threshold *float64 `json:"threshold" validate:"required"`
	Coin      *string  `json:"coin"`
	City      *string  `json:"city"`
}

func registerAlertRoutes(api fiber.Router, deps Deps) {
	api.Get("/alerts", func(c *fiber.Ctx) error {
		return c.JSON(deps.Alerts.List())
	})

	api.Post("/alerts", func(c *fiber.Ctx) error {
		var req alertCreateRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid alert: "+err.Error())
		}

		typ := alerts.TypeCryptoChange
		if req.Type != "" {
			typ = alerts.Type(req.Type)
		}
		op := alerts.OperatorAbove
		if req.Operator != "" {
			op = alerts.Operator(req.Operator)
		}
		coin := strings.ToLower(derefTrim(req.Coin))
		city := derefTrim(req.City)

		alert, err := deps.Alerts.Create(strings.TrimSpace(req.Name), typ, op, *req.Threshold, coin, city)
		if err != nil {
			if errors.Is(err, alerts.ErrCoinRequired) || errors.Is(err, alerts.ErrCityRequired) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(alert)
	})

	api.Patch("/alerts/:id", func(c *fiber.Ctx) error {
		var req enabledRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "enabled is required")
		}

		id := c.Params("id")
		alert, err := deps.Alerts.SetEnabled(id, *req.Enabled)
		if err != nil {
			if errors.Is(err, alerts.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Alert "+id+" not found")
			}
			return err
		}
		return c.JSON(alert)
	})

	api.Delete("/alerts/:id", func(c *fiber.Ctx) error {
		id := c.Params("id")
		if err := deps.Alerts.Delete(id); err != nil {
			if errors.Is(err, alerts.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Alert "+id+" not found")
			}
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
