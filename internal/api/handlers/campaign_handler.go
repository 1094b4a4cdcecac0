package handlers

import (
	"github.com/contentwell/contentwell/internal/service"
	"github.com/contentwell/contentwell/internal/transfer"
	"github.com/gofiber/fiber/v2"
)

type CampaignHandler struct {
	s service.CampaignService
}

func NewCampaignHandler(service service.CampaignService) *CampaignHandler {
	return &CampaignHandler{s: service}
}

func (h *CampaignHandler) CreateCampaign(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var creation transfer.CampaignCreation
	if err := c.BodyParser(&creation); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	campaignID, err := h.s.Create(c.Context(), userID, &creation)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"id":      campaignID,
		"message": "Campaign created, generation started",
	})
}

func (h *CampaignHandler) ListCampaigns(c *fiber.Ctx) error {
	userID := GetUserID(c)

	campaigns, err := h.s.List(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list campaigns",
		})
	}

	return c.Status(fiber.StatusOK).JSON(campaigns)
}

func (h *CampaignHandler) GetCampaign(c *fiber.Ctx) error {
	userID := GetUserID(c)
	campaignID, err := c.ParamsInt("id", 0)
	if err != nil || campaignID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid campaign id",
		})
	}

	campaign, items, err := h.s.Get(c.Context(), userID, int64(campaignID))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"campaign": campaign,
		"items":    items,
	})
}

func (h *CampaignHandler) RemoveCampaign(c *fiber.Ctx) error {
	userID := GetUserID(c)
	campaignID, err := c.ParamsInt("id", 0)
	if err != nil || campaignID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid campaign id",
		})
	}

	if err := h.s.Remove(c.Context(), userID, int64(campaignID)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to remove campaign",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
