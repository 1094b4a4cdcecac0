package handlers

import (
	"errors"

	"github.com/contentwell/contentwell/internal/service"
	"github.com/contentwell/contentwell/internal/transfer"
	"github.com/gofiber/fiber/v2"
)

type PublishHandler struct {
	s service.PublishService
}

func NewPublishHandler(service service.PublishService) *PublishHandler {
	return &PublishHandler{s: service}
}

func (h *PublishHandler) PublishContentItem(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.PublishRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	err := h.s.PublishForUser(c.Context(), userID, req.ItemID, req.Platform)
	if err != nil {
		return c.Status(publishErrorStatus(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Published successfully",
	})
}

func (h *PublishHandler) PublishHistory(c *fiber.Ctx) error {
	userID := GetUserID(c)

	history, err := h.s.History(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list publish history",
		})
	}

	return c.Status(fiber.StatusOK).JSON(history)
}

func publishErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrNotConnected):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrTokenExpired):
		return fiber.StatusUnauthorized
	case errors.Is(err, service.ErrPermissionDenied):
		return fiber.StatusForbidden
	case errors.Is(err, service.ErrImageRequired):
		return fiber.StatusBadRequest
	}
	return fiber.StatusBadGateway
}
