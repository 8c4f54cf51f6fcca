package services

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/desainhub/desainhub-api/apperr"
	"github.com/desainhub/desainhub-api/database"
	"github.com/desainhub/desainhub-api/models"
	"github.com/desainhub/desainhub-api/notifications"
	"github.com/desainhub/desainhub-api/payments"
	"github.com/desainhub/desainhub-api/utils"
	"github.com/desainhub/desainhub-api/websocket"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GatewayNotification is the subset of a Midtrans webhook payload the state
// machine consumes; the raw body is persisted alongside it untouched.
type GatewayNotification struct {
	OrderID           string `json:"order_id"`
	TransactionID     string `json:"transaction_id"`
	TransactionStatus string `json:"transaction_status"`
	GrossAmount       string `json:"gross_amount"`
	PaymentType       string `json:"payment_type"`
	FraudStatus       string `json:"fraud_status"`
}

// GenerateSnapToken verifies the order and asks the gateway for a checkout
// token under a fresh derived reference. No Order or Payment state changes.
func GenerateSnapToken(orderID uuid.UUID, amount float64) (*payments.SnapTransaction, error) {
	var order models.Order
	if err := database.DB.
		Preload("Client").
		Preload("Service").
		First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Wrap(apperr.ErrNotFound, "order not found")
		}
		return nil, err
	}

	itemName := order.Service.Title
	if itemName == "" {
		itemName = "Design Service"
	}

	return payments.CreateSnapTransaction(
		utils.BuildOrderReference(order.ID),
		amount,
		order.ServiceID.String(),
		itemName,
		order.Client.Name,
		order.Client.Email,
	)
}

// ReconcileNotification applies one gateway notification. Notifications are
// at-least-once, possibly duplicated and out of order; the payment row keyed
// by the echoed reference plus the guarded paid flip keep replays from
// double-applying anything. It reports whether this call settled the order.
func ReconcileNotification(n GatewayNotification, raw []byte) (*models.Payment, bool, error) {
	orderID, err := utils.ParseOrderReference(n.OrderID)
	if err != nil {
		return nil, false, err
	}

	var order models.Order
	var payment models.Payment
	settledNow := false

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Wrap(apperr.ErrNotFound, "order referenced by gateway notification not found")
			}
			return err
		}

		amount, perr := strconv.ParseFloat(n.GrossAmount, 64)
		if perr != nil {
			log.Printf("🔥 Unparseable gross_amount %q on notification for %s, recording 0: %v", n.GrossAmount, n.OrderID, perr)
		}

		res := tx.Where("gateway_order_id = ?", n.OrderID).First(&payment)
		switch {
		case errors.Is(res.Error, gorm.ErrRecordNotFound):
			payment = models.Payment{
				OrderID:           order.ID,
				ClientID:          order.ClientID,
				Amount:            amount,
				PaymentMethod:     n.PaymentType,
				TransactionStatus: n.TransactionStatus,
				GatewayOrderID:    n.OrderID,
				GatewayResponse:   datatypes.JSON(raw),
			}
			if n.FraudStatus != "" {
				fs := n.FraudStatus
				payment.FraudStatus = &fs
			}
			if err := tx.Create(&payment).Error; err != nil {
				return err
			}
		case res.Error != nil:
			return res.Error
		default:
			// Last write wins: the gateway is authoritative for the
			// transaction status.
			updates := map[string]interface{}{
				"transaction_status": n.TransactionStatus,
				"gateway_response":   datatypes.JSON(raw),
			}
			if n.PaymentType != "" {
				updates["payment_method"] = n.PaymentType
			}
			if n.FraudStatus != "" {
				updates["fraud_status"] = n.FraudStatus
			}
			if err := tx.Model(&payment).Updates(updates).Error; err != nil {
				return err
			}
			payment.TransactionStatus = n.TransactionStatus
		}

		if models.Settled(n.TransactionStatus, n.FraudStatus) {
			applied, err := MarkOrderPaid(tx, order.ID)
			if err != nil {
				return err
			}
			settledNow = applied
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if settledNow {
		go notifySettlement(database.DB, order.ID, payment.ID)
	}

	return &payment, settledNow, nil
}

// GetPaymentByOrderID returns the most recent payment attempt for an order.
func GetPaymentByOrderID(orderID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := database.DB.
		Where("order_id = ?", orderID).
		Order("created_at desc").
		First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Wrap(apperr.ErrNotFound, "payment not found for this order")
		}
		return nil, err
	}
	return &payment, nil
}

func notifySettlement(db *gorm.DB, orderID, paymentID uuid.UUID) {
	var order models.Order
	if err := db.Preload("Client").Preload("Designer").Preload("Service").
		First(&order, "id = ?", orderID).Error; err != nil {
		log.Printf("🔥 Failed to load order %s for settlement notifications: %v", orderID, err)
		return
	}

	notifications.SendEmail(order.Client.Name, order.Client.Email,
		"Payment confirmed",
		fmt.Sprintf("<h1>Payment Confirmed</h1><p>Dear %s,</p><p>Your payment of $%.2f for \"%s\" has been received. The designer can now start working.</p>", order.Client.Name, order.Price, order.Service.Title))
	notifications.SendEmail(order.Designer.Name, order.Designer.Email,
		"Payment received, you can start working",
		fmt.Sprintf("<h1>Order Paid</h1><p>Dear %s,</p><p>The client has paid for \"%s\". The order is now in progress.</p>", order.Designer.Name, order.Service.Title))

	websocket.Notify(order.ClientID, "order_paid", order.ID.String(), "Payment confirmed, order in progress.")
	websocket.Notify(order.DesignerID, "order_paid", order.ID.String(), "Payment received, you can start working.")

	GenerateReceipt(db, paymentID)
}
