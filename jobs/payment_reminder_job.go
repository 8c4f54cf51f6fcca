package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/desainhub/desainhub-api/database"
	"github.com/desainhub/desainhub-api/models"
	"github.com/desainhub/desainhub-api/notifications"
)

// SendPaymentReminders nudges clients whose order has sat unpaid for a day.
// The job runs hourly and the one-hour window keeps each order to a single
// reminder.
func SendPaymentReminders() {
	log.Println("⏰ Running payment reminder job...")

	now := time.Now()
	windowEnd := now.Add(-24 * time.Hour)
	windowStart := now.Add(-25 * time.Hour)

	var orders []models.Order
	if err := database.DB.
		Preload("Client").
		Preload("Service").
		Where("status = ? AND is_paid = ? AND created_at BETWEEN ? AND ?",
			models.OrderStatusAwaitingPayment, false, windowStart, windowEnd).
		Find(&orders).Error; err != nil {
		log.Printf("🔥 Payment reminder query failed: %v", err)
		return
	}

	for _, order := range orders {
		notifications.SendEmail(order.Client.Name, order.Client.Email,
			"Reminder: complete your payment",
			fmt.Sprintf("<h1>Payment Pending</h1><p>Dear %s,</p><p>Your order for \"%s\" is still waiting for payment of $%.2f. The designer cannot start until the payment is settled.</p>",
				order.Client.Name, order.Service.Title, order.Price))
	}

	if len(orders) > 0 {
		log.Printf("✅ Sent %d payment reminder(s)", len(orders))
	}
}
