package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/desainhub/desainhub-api/database"
	"github.com/desainhub/desainhub-api/models"
	"github.com/desainhub/desainhub-api/notifications"
)

// SendReviewReminders nudges clients who have left a deliverable unreviewed
// for two days. Same hourly window trick as the payment reminders.
func SendReviewReminders() {
	log.Println("⏰ Running review reminder job...")

	now := time.Now()
	windowEnd := now.Add(-48 * time.Hour)
	windowStart := now.Add(-49 * time.Hour)

	var deliverables []models.Deliverable
	if err := database.DB.
		Preload("Order.Client").
		Preload("Order.Service").
		Where("status = ? AND submitted_at BETWEEN ? AND ?",
			models.DeliverableStatusPending, windowStart, windowEnd).
		Find(&deliverables).Error; err != nil {
		log.Printf("🔥 Review reminder query failed: %v", err)
		return
	}

	for _, d := range deliverables {
		client := d.Order.Client
		notifications.SendEmail(client.Name, client.Email,
			"Reminder: a deliverable is waiting for your review",
			fmt.Sprintf("<h1>Review Pending</h1><p>Dear %s,</p><p>The designer submitted work for \"%s\" two days ago and it is still waiting for your review.</p>",
				client.Name, d.Order.Service.Title))
	}

	if len(deliverables) > 0 {
		log.Printf("✅ Sent %d review reminder(s)", len(deliverables))
	}
}
