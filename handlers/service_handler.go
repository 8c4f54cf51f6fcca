package handlers

import (
	"encoding/json"
	"time"

	"github.com/desainhub/desainhub-api/apperr"
	"github.com/desainhub/desainhub-api/database"
	"github.com/desainhub/desainhub-api/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type CreateServiceInput struct {
	CategoryID  string   `json:"category_id" validate:"required,uuid4"`
	Title       string   `json:"title" validate:"required,min=3,max=255"`
	Description string   `json:"description" validate:"required,min=10"`
	Budget      float64  `json:"budget" validate:"required,gt=0"`
	Deadline    string   `json:"deadline" validate:"required"`
	Attachments []string `json:"attachments"`
}

type UpdateServiceInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Budget      float64  `json:"budget"`
	Deadline    string   `json:"deadline"`
	Attachments []string `json:"attachments"`
}

func CreateServiceRequest(c *fiber.Ctx) error {
	var input CreateServiceInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	deadline, err := time.Parse(time.RFC3339, input.Deadline)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Deadline must be an RFC3339 timestamp"})
	}
	if deadline.Before(time.Now()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Deadline must be in the future"})
	}

	categoryID, _ := uuid.Parse(input.CategoryID)
	var category models.Category
	if err := database.DB.First(&category, "id = ?", categoryID).Error; err != nil {
		return fail(c, apperr.Wrap(apperr.ErrNotFound, "category not found"))
	}

	attachments, err := attachmentsJSON(input.Attachments)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid attachments"})
	}

	service := models.ServiceRequest{
		ClientID:    actorID(c),
		CategoryID:  categoryID,
		Title:       input.Title,
		Description: input.Description,
		Budget:      input.Budget,
		Deadline:    deadline,
		Attachments: attachments,
		Status:      models.ServiceStatusOpen,
	}
	if err := database.DB.Create(&service).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create service request"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Service request created",
		"service": service,
	})
}

func GetMyServiceRequests(c *fiber.Ctx) error {
	var services []models.ServiceRequest
	if err := database.DB.
		Preload("Category").
		Where("client_id = ?", actorID(c)).
		Order("created_at desc").
		Find(&services).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch service requests"})
	}
	return c.JSON(services)
}

func GetServiceRequest(c *fiber.Ctx) error {
	serviceID, err := parseUUIDParam(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var service models.ServiceRequest
	if err := database.DB.
		Preload("Category").
		Preload("Applications.Designer").
		First(&service, "id = ?", serviceID).Error; err != nil {
		return fail(c, apperr.Wrap(apperr.ErrNotFound, "service request not found"))
	}

	if service.ClientID != actorID(c) {
		return fail(c, apperr.Wrap(apperr.ErrForbidden, "you do not own this service request"))
	}
	return c.JSON(service)
}

// UpdateServiceRequest edits an open request. Once a designer is assigned the
// budget and scope are frozen.
func UpdateServiceRequest(c *fiber.Ctx) error {
	serviceID, err := parseUUIDParam(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var input UpdateServiceInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	var service models.ServiceRequest
	if err := database.DB.First(&service, "id = ?", serviceID).Error; err != nil {
		return fail(c, apperr.Wrap(apperr.ErrNotFound, "service request not found"))
	}
	if service.ClientID != actorID(c) {
		return fail(c, apperr.Wrap(apperr.ErrForbidden, "you do not own this service request"))
	}
	if service.Status != models.ServiceStatusOpen {
		return fail(c, apperr.Wrap(apperr.ErrConflict, "only open service requests can be edited"))
	}

	updates := map[string]interface{}{}
	if input.Title != "" {
		updates["title"] = input.Title
	}
	if input.Description != "" {
		updates["description"] = input.Description
	}
	if input.Budget > 0 {
		updates["budget"] = input.Budget
	}
	if input.Deadline != "" {
		deadline, err := time.Parse(time.RFC3339, input.Deadline)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Deadline must be an RFC3339 timestamp"})
		}
		updates["deadline"] = deadline
	}
	if input.Attachments != nil {
		attachments, err := attachmentsJSON(input.Attachments)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid attachments"})
		}
		updates["attachments"] = attachments
	}
	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Nothing to update"})
	}

	// The status guard rejects an edit racing with an application.
	res := database.DB.Model(&models.ServiceRequest{}).
		Where("id = ? AND status = ?", serviceID, models.ServiceStatusOpen).
		Updates(updates)
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update service request"})
	}
	if res.RowsAffected == 0 {
		return fail(c, apperr.Wrap(apperr.ErrConflict, "only open service requests can be edited"))
	}

	database.DB.Preload("Category").First(&service, "id = ?", serviceID)
	return c.JSON(fiber.Map{"message": "Service request updated", "service": service})
}

func DeleteServiceRequest(c *fiber.Ctx) error {
	serviceID, err := parseUUIDParam(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var service models.ServiceRequest
	if err := database.DB.First(&service, "id = ?", serviceID).Error; err != nil {
		return fail(c, apperr.Wrap(apperr.ErrNotFound, "service request not found"))
	}
	if service.ClientID != actorID(c) {
		return fail(c, apperr.Wrap(apperr.ErrForbidden, "you do not own this service request"))
	}
	if service.Status != models.ServiceStatusOpen {
		return fail(c, apperr.Wrap(apperr.ErrConflict, "only open service requests can be deleted"))
	}

	res := database.DB.
		Where("id = ? AND status = ?", serviceID, models.ServiceStatusOpen).
		Delete(&models.ServiceRequest{})
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete service request"})
	}
	if res.RowsAffected == 0 {
		return fail(c, apperr.Wrap(apperr.ErrConflict, "only open service requests can be deleted"))
	}

	return c.JSON(fiber.Map{"message": "Service request deleted"})
}

func attachmentsJSON(urls []string) (datatypes.JSON, error) {
	if urls == nil {
		return nil, nil
	}
	b, err := json.Marshal(urls)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}
