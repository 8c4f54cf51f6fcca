package handlers

import (
	"context"
	"log"

	"github.com/desainhub/desainhub-api/apperr"
	"github.com/desainhub/desainhub-api/database"
	"github.com/desainhub/desainhub-api/models"
	"github.com/desainhub/desainhub-api/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const portfolioFolder = "desainhub_portfolio"

// CreatePortfolioItem publishes a work sample. The image arrives as multipart
// form data alongside the metadata fields.
func CreatePortfolioItem(c *fiber.Ctx) error {
	title := c.FormValue("title")
	if title == "" {
		return fail(c, apperr.Wrap(apperr.ErrValidation, "title is required"))
	}

	var categoryID *uuid.UUID
	if raw := c.FormValue("category_id"); raw != "" {
		id, err := parseUUIDFrom(raw, "category_id")
		if err != nil {
			return fail(c, err)
		}
		categoryID = &id
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return fail(c, apperr.Wrap(apperr.ErrValidation, "an image file is required"))
	}
	if services.FileStore == nil {
		return fail(c, apperr.Wrap(apperr.ErrGateway, "file storage is not configured"))
	}

	ctx, cancel := context.WithTimeout(c.Context(), uploadTimeout)
	defer cancel()

	stored, err := services.FileStore.Upload(ctx, fileHeader, portfolioFolder)
	if err != nil {
		log.Printf("🔥 Portfolio image upload failed: %v", err)
		return fail(c, apperr.Wrap(apperr.ErrGateway, "failed to store the image"))
	}

	item := models.PortfolioItem{
		DesignerID:  actorID(c),
		CategoryID:  categoryID,
		Title:       title,
		Description: c.FormValue("description"),
		ImageURL:    stored.URL,
	}
	if err := database.DB.Create(&item).Error; err != nil {
		go discardUpload(stored)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create portfolio item"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Portfolio item created",
		"item":    item,
	})
}

// GetDesignerPortfolio is public: clients browse it before posting work.
func GetDesignerPortfolio(c *fiber.Ctx) error {
	designerID, err := parseUUIDParam(c, "designerId")
	if err != nil {
		return fail(c, err)
	}

	var items []models.PortfolioItem
	if err := database.DB.
		Preload("Category").
		Where("designer_id = ?", designerID).
		Order("created_at desc").
		Find(&items).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch portfolio"})
	}
	return c.JSON(items)
}

type UpdatePortfolioInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func UpdatePortfolioItem(c *fiber.Ctx) error {
	itemID, err := parseUUIDParam(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var input UpdatePortfolioInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	var item models.PortfolioItem
	if err := database.DB.First(&item, "id = ?", itemID).Error; err != nil {
		return fail(c, apperr.Wrap(apperr.ErrNotFound, "portfolio item not found"))
	}
	if item.DesignerID != actorID(c) {
		return fail(c, apperr.Wrap(apperr.ErrForbidden, "you do not own this portfolio item"))
	}

	updates := map[string]interface{}{}
	if input.Title != "" {
		updates["title"] = input.Title
	}
	if input.Description != "" {
		updates["description"] = input.Description
	}
	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Nothing to update"})
	}

	if err := database.DB.Model(&item).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update portfolio item"})
	}
	return c.JSON(fiber.Map{"message": "Portfolio item updated", "item": item})
}

func DeletePortfolioItem(c *fiber.Ctx) error {
	itemID, err := parseUUIDParam(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var item models.PortfolioItem
	if err := database.DB.First(&item, "id = ?", itemID).Error; err != nil {
		return fail(c, apperr.Wrap(apperr.ErrNotFound, "portfolio item not found"))
	}
	if item.DesignerID != actorID(c) {
		return fail(c, apperr.Wrap(apperr.ErrForbidden, "you do not own this portfolio item"))
	}

	if err := database.DB.Delete(&item).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete portfolio item"})
	}
	return c.JSON(fiber.Map{"message": "Portfolio item deleted"})
}
