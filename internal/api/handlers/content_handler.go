package handlers

import (
	"github.com/contentwell/contentwell/internal/service"
	"github.com/contentwell/contentwell/internal/transfer"
	"github.com/gofiber/fiber/v2"
)

type ContentHandler struct {
	s   service.ContentService
	gen service.GenerationService
}

func NewContentHandler(service service.ContentService, gen service.GenerationService) *ContentHandler {
	return &ContentHandler{s: service, gen: gen}
}

func (h *ContentHandler) GetContentItem(c *fiber.Ctx) error {
	userID := GetUserID(c)
	itemID, err := c.ParamsInt("id", 0)
	if err != nil || itemID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid content id",
		})
	}

	item, err := h.s.Get(c.Context(), userID, int64(itemID))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(item)
}

func (h *ContentHandler) UpdateContentItem(c *fiber.Ctx) error {
	userID := GetUserID(c)
	itemID, err := c.ParamsInt("id", 0)
	if err != nil || itemID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid content id",
		})
	}

	var update transfer.ContentUpdate
	if err := c.BodyParser(&update); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	if err := h.s.UpdateText(c.Context(), userID, int64(itemID), update.Text); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *ContentHandler) ApproveContentItem(c *fiber.Ctx) error {
	userID := GetUserID(c)
	itemID, err := c.ParamsInt("id", 0)
	if err != nil || itemID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid content id",
		})
	}

	if err := h.s.Approve(c.Context(), userID, int64(itemID)); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *ContentHandler) RemoveContentItem(c *fiber.Ctx) error {
	userID := GetUserID(c)
	itemID, err := c.ParamsInt("id", 0)
	if err != nil || itemID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid content id",
		})
	}

	if err := h.s.Remove(c.Context(), userID, int64(itemID)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to remove content item",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *ContentHandler) RegenerateText(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.RegenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	if err := h.gen.RegenerateText(c.Context(), userID, &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *ContentHandler) RegenerateImage(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.RegenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	if err := h.gen.RegenerateImage(c.Context(), userID, &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
