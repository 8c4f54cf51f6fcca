package handlers

import (
	"github.com/desainhub/desainhub-api/apperr"
	"github.com/desainhub/desainhub-api/database"
	"github.com/desainhub/desainhub-api/models"
	"github.com/desainhub/desainhub-api/services"
	"github.com/gofiber/fiber/v2"
)

// BrowseServiceRequests lists open requests for designers, optionally filtered
// by category.
func BrowseServiceRequests(c *fiber.Ctx) error {
	query := database.DB.
		Preload("Category").
		Preload("Client").
		Where("status = ?", models.ServiceStatusOpen)

	if category := c.Query("category_id"); category != "" {
		query = query.Where("category_id = ?", category)
	}

	var requests []models.ServiceRequest
	if err := query.Order("created_at desc").Find(&requests).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch service requests"})
	}
	return c.JSON(requests)
}

func GetServiceRequestForDesigner(c *fiber.Ctx) error {
	serviceID, err := parseUUIDParam(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var service models.ServiceRequest
	if err := database.DB.
		Preload("Category").
		Preload("Client").
		First(&service, "id = ?", serviceID).Error; err != nil {
		return fail(c, apperr.Wrap(apperr.ErrNotFound, "service request not found"))
	}
	return c.JSON(service)
}

// ApplyForService accepts a designer's application. First successful
// application wins the assignment and creates the order.
func ApplyForService(c *fiber.Ctx) error {
	serviceID, err := parseUUIDParam(c, "id")
	if err != nil {
		return fail(c, err)
	}

	order, err := services.ApplyForService(serviceID, actorID(c))
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Application accepted, order created awaiting payment",
		"order":   order,
	})
}

// CancelService lets the assigned designer withdraw from a request.
func CancelService(c *fiber.Ctx) error {
	serviceID, err := parseUUIDParam(c, "id")
	if err != nil {
		return fail(c, err)
	}

	service, err := services.CancelService(serviceID, actorID(c))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Service request cancelled",
		"service": service,
	})
}

// GetMyAssignments lists the requests currently assigned to the designer.
func GetMyAssignments(c *fiber.Ctx) error {
	var requests []models.ServiceRequest
	if err := database.DB.
		Preload("Category").
		Preload("Client").
		Where("assigned_to = ?", actorID(c)).
		Order("updated_at desc").
		Find(&requests).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch assignments"})
	}
	return c.JSON(requests)
}
