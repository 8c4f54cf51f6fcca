package handlers

import (
	"github.com/desainhub/desainhub-api/database"
	"github.com/desainhub/desainhub-api/models"
	"github.com/desainhub/desainhub-api/services"
	"github.com/gofiber/fiber/v2"
)

func GetOrder(c *fiber.Ctx) error {
	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		return fail(c, err)
	}

	order, err := services.GetOrderForActor(orderID, actorID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(order)
}

// GetMyOrders returns orders the actor is party to on either side.
func GetMyOrders(c *fiber.Ctx) error {
	userID := actorID(c)

	query := database.DB.
		Preload("Service").
		Preload("Client").
		Preload("Designer").
		Where("client_id = ? OR designer_id = ?", userID, userID)

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var orders []models.Order
	if err := query.Order("created_at desc").Find(&orders).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch orders"})
	}
	return c.JSON(orders)
}

// GetPaidOrders lists the actor's orders with settled payment, the designer's
// active workload view.
func GetPaidOrders(c *fiber.Ctx) error {
	userID := actorID(c)

	var orders []models.Order
	if err := database.DB.
		Preload("Service").
		Preload("Client").
		Preload("Designer").
		Where("(client_id = ? OR designer_id = ?) AND is_paid = ?", userID, userID, true).
		Order("updated_at desc").
		Find(&orders).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch orders"})
	}
	return c.JSON(orders)
}

type UpdateOrderStatusInput struct {
	Status string `json:"status" validate:"required"`
}

func UpdateOrderStatus(c *fiber.Ctx) error {
	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var input UpdateOrderStatusInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	order, err := services.UpdateOrderStatus(orderID, input.Status, actorID(c))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Order status updated",
		"order":   order,
	})
}
