package handlers

import (
	"github.com/desainhub/desainhub-api/apperr"
	"github.com/desainhub/desainhub-api/database"
	"github.com/desainhub/desainhub-api/models"
	"github.com/gofiber/fiber/v2"
)

type CategoryInput struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description"`
}

func GetCategories(c *fiber.Ctx) error {
	var categories []models.Category
	if err := database.DB.Order("name asc").Find(&categories).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch categories"})
	}
	return c.JSON(categories)
}

func GetCategory(c *fiber.Ctx) error {
	categoryID, err := parseUUIDParam(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var category models.Category
	if err := database.DB.First(&category, "id = ?", categoryID).Error; err != nil {
		return fail(c, apperr.Wrap(apperr.ErrNotFound, "category not found"))
	}
	return c.JSON(category)
}

func CreateCategory(c *fiber.Ctx) error {
	var input CategoryInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	category := models.Category{Name: input.Name, Description: input.Description}
	if err := database.DB.Create(&category).Error; err != nil {
		return fail(c, apperr.Wrap(apperr.ErrConflict, "category already exists"))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Category created",
		"category": category,
	})
}

func UpdateCategory(c *fiber.Ctx) error {
	categoryID, err := parseUUIDParam(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var input CategoryInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var category models.Category
	if err := database.DB.First(&category, "id = ?", categoryID).Error; err != nil {
		return fail(c, apperr.Wrap(apperr.ErrNotFound, "category not found"))
	}

	category.Name = input.Name
	category.Description = input.Description
	if err := database.DB.Save(&category).Error; err != nil {
		return fail(c, apperr.Wrap(apperr.ErrConflict, "category name already in use"))
	}

	return c.JSON(fiber.Map{"message": "Category updated", "category": category})
}

func DeleteCategory(c *fiber.Ctx) error {
	categoryID, err := parseUUIDParam(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var inUse int64
	if err := database.DB.Model(&models.ServiceRequest{}).
		Where("category_id = ?", categoryID).
		Count(&inUse).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check category usage"})
	}
	if inUse > 0 {
		return fail(c, apperr.Wrap(apperr.ErrConflict, "category is referenced by existing service requests"))
	}

	res := database.DB.Delete(&models.Category{}, "id = ?", categoryID)
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete category"})
	}
	if res.RowsAffected == 0 {
		return fail(c, apperr.Wrap(apperr.ErrNotFound, "category not found"))
	}

	return c.JSON(fiber.Map{"message": "Category deleted"})
}
