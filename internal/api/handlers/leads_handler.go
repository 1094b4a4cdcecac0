package handlers

import (
	"log/slog"

	"github.com/contentwell/contentwell/internal/service"
	"github.com/contentwell/contentwell/internal/transfer"
	"github.com/gofiber/fiber/v2"
)

type LeadsHandler struct {
	s service.LeadsService
}

func NewLeadsHandler(service service.LeadsService) *LeadsHandler {
	return &LeadsHandler{s: service}
}

func (h *LeadsHandler) ImportLeads(c *fiber.Ctx) error {
	userID := GetUserID(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No CSV file uploaded",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to open uploaded file",
		})
	}
	defer file.Close()

	summary, err := h.s.ImportCSV(c.Context(), userID, file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(summary)
}

func (h *LeadsHandler) ListBatches(c *fiber.Ctx) error {
	userID := GetUserID(c)

	batches, err := h.s.ListBatches(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list lead batches",
		})
	}

	return c.Status(fiber.StatusOK).JSON(batches)
}

func (h *LeadsHandler) ListBatch(c *fiber.Ctx) error {
	userID := GetUserID(c)
	batchID := c.Params("batch_id")

	leads, err := h.s.ListBatch(c.Context(), userID, batchID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list leads",
		})
	}

	return c.Status(fiber.StatusOK).JSON(leads)
}

func (h *LeadsHandler) RemoveBatch(c *fiber.Ctx) error {
	userID := GetUserID(c)
	batchID := c.Params("batch_id")

	if err := h.s.RemoveBatch(c.Context(), userID, batchID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to remove lead batch",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *LeadsHandler) PushLeads(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.LeadPushRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	campaignID, err := h.s.Push(c.Context(), userID, &req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"smartlead_campaign_id": campaignID,
		"message":               "Campaign started",
	})
}
