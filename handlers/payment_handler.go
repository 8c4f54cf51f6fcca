package handlers

import (
	"encoding/json"
	"log"

	"github.com/desainhub/desainhub-api/apperr"
	"github.com/desainhub/desainhub-api/database"
	"github.com/desainhub/desainhub-api/models"
	"github.com/desainhub/desainhub-api/payments"
	"github.com/desainhub/desainhub-api/services"
	"github.com/gofiber/fiber/v2"
)

type GenerateTokenInput struct {
	OrderID string `json:"order_id" validate:"required,uuid4"`
}

// GenerateSnapToken hands the client a gateway checkout token for an unpaid
// order they own.
func GenerateSnapToken(c *fiber.Ctx) error {
	var input GenerateTokenInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	orderID, err := parseUUIDFrom(input.OrderID, "order_id")
	if err != nil {
		return fail(c, err)
	}

	order, err := services.GetOrderForActor(orderID, actorID(c))
	if err != nil {
		return fail(c, err)
	}
	if order.ClientID != actorID(c) {
		return fail(c, apperr.Wrap(apperr.ErrForbidden, "only the client can pay for an order"))
	}
	if order.IsPaid {
		return fail(c, apperr.Wrap(apperr.ErrConflict, "order has already been paid"))
	}
	if order.Status != models.OrderStatusAwaitingPayment {
		return fail(c, apperr.Wrap(apperr.ErrConflict, "order is not awaiting payment"))
	}

	snapTx, err := services.GenerateSnapToken(order.ID, order.Price)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"token":        snapTx.Token,
		"redirect_url": snapTx.RedirectURL,
		"client_key":   payments.ClientKey(),
	})
}

// HandleGatewayNotification ingests a Midtrans webhook. The gateway retries
// on non-200, so processing failures are logged and acknowledged anyway;
// reconciliation is idempotent and the next retry or status poll converges.
func HandleGatewayNotification(c *fiber.Ctx) error {
	raw := make([]byte, len(c.Body()))
	copy(raw, c.Body())

	var notification services.GatewayNotification
	if err := json.Unmarshal(raw, &notification); err != nil {
		log.Printf("⚠️ Unparseable gateway notification: %v", err)
		return c.JSON(fiber.Map{"status": "ignored"})
	}

	payment, settledNow, err := services.ReconcileNotification(notification, raw)
	if err != nil {
		log.Printf("🔥 Failed to reconcile gateway notification for %s: %v", notification.OrderID, err)
		return c.JSON(fiber.Map{"status": "error"})
	}

	if settledNow {
		log.Printf("✅ Payment settled for order reference %s", notification.OrderID)
	}
	return c.JSON(fiber.Map{
		"status":             "ok",
		"transaction_status": payment.TransactionStatus,
	})
}

// GetOrderPayment returns the latest payment attempt for an order the actor is
// party to.
func GetOrderPayment(c *fiber.Ctx) error {
	orderID, err := parseUUIDParam(c, "orderId")
	if err != nil {
		return fail(c, err)
	}

	if _, err := services.GetOrderForActor(orderID, actorID(c)); err != nil {
		return fail(c, err)
	}

	payment, err := services.GetPaymentByOrderID(orderID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(payment)
}

// GetAllPayments is the admin reconciliation view.
func GetAllPayments(c *fiber.Ctx) error {
	query := database.DB.
		Preload("Order").
		Preload("Client")

	if status := c.Query("transaction_status"); status != "" {
		query = query.Where("transaction_status = ?", status)
	}

	var list []models.Payment
	if err := query.Order("created_at desc").Find(&list).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch payments"})
	}
	return c.JSON(list)
}
