package services

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/desainhub/desainhub-api/apperr"
	"github.com/desainhub/desainhub-api/authz"
	config "github.com/desainhub/desainhub-api/configs"
	"github.com/desainhub/desainhub-api/database"
	"github.com/desainhub/desainhub-api/models"
	"github.com/desainhub/desainhub-api/notifications"
	"github.com/desainhub/desainhub-api/websocket"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func maxRevisionsFromConfig() int {
	if v, err := strconv.Atoi(config.Config("MAX_REVISIONS")); err == nil && v > 0 {
		return v
	}
	return models.DefaultMaxRevisions
}

// ApplyForService records a designer's application on an open service
// request, assigns the request to them and creates the order awaiting
// payment, all in one transaction.
func ApplyForService(serviceID, designerID uuid.UUID) (*models.Order, error) {
	var service models.ServiceRequest
	var order models.Order

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Client").First(&service, "id = ?", serviceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Wrap(apperr.ErrNotFound, "service request not found")
			}
			return err
		}

		if service.Status != models.ServiceStatusOpen {
			return apperr.Wrap(apperr.ErrConflict, "this service request is no longer open for applications")
		}

		var dup int64
		if err := tx.Model(&models.Application{}).
			Where("service_id = ? AND designer_id = ?", serviceID, designerID).
			Count(&dup).Error; err != nil {
			return err
		}
		if dup > 0 {
			return apperr.Wrap(apperr.ErrConflict, "you have already applied for this service")
		}

		application := models.Application{ServiceID: serviceID, DesignerID: designerID}
		if err := tx.Create(&application).Error; err != nil {
			return err
		}

		// Guarded assignment: of two concurrent applications only one can
		// move the request out of "open".
		res := tx.Model(&models.ServiceRequest{}).
			Where("id = ? AND status = ?", serviceID, models.ServiceStatusOpen).
			Updates(map[string]interface{}{
				"status":      models.ServiceStatusAssigned,
				"assigned_to": designerID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.Wrap(apperr.ErrConflict, "this service request is no longer open for applications")
		}

		order = models.Order{
			ServiceID:    serviceID,
			ClientID:     service.ClientID,
			DesignerID:   designerID,
			Price:        service.Budget,
			Status:       models.OrderStatusAwaitingPayment,
			MaxRevisions: maxRevisionsFromConfig(),
			IsPaid:       false,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	go notifyAssignment(database.DB, service, order)

	return &order, nil
}

// CancelService lets the assigned designer withdraw from a request. An order
// that is still unpaid is cancelled with its parent; a paid order is left
// untouched and must be resolved through the order status endpoint.
func CancelService(serviceID, designerID uuid.UUID) (*models.ServiceRequest, error) {
	var service models.ServiceRequest

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Client").First(&service, "id = ?", serviceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Wrap(apperr.ErrNotFound, "service request not found")
			}
			return err
		}

		if err := authz.Authorize(designerID, &service, authz.ActionCancel); err != nil {
			return err
		}

		if service.Status == models.ServiceStatusCancelled {
			return apperr.Wrap(apperr.ErrConflict, "service request is already cancelled")
		}

		if err := tx.Model(&models.ServiceRequest{}).
			Where("id = ?", serviceID).
			Update("status", models.ServiceStatusCancelled).Error; err != nil {
			return err
		}
		service.Status = models.ServiceStatusCancelled

		return tx.Model(&models.Order{}).
			Where("service_id = ? AND status = ? AND is_paid = ?",
				serviceID, models.OrderStatusAwaitingPayment, false).
			Update("status", models.OrderStatusCancelled).Error
	})
	if err != nil {
		return nil, err
	}

	go func() {
		notifications.SendEmail(service.Client.Name, service.Client.Email,
			"Your designer has withdrawn",
			fmt.Sprintf("<h1>Service Cancelled</h1><p>The designer assigned to \"%s\" has withdrawn. Your request is closed; please post a new one if you still need the work done.</p>", service.Title))
		websocket.Notify(service.ClientID, "service_cancelled", "", "The designer has withdrawn from your service request.")
	}()

	return &service, nil
}

func notifyAssignment(db *gorm.DB, service models.ServiceRequest, order models.Order) {
	var designer models.User
	if err := db.First(&designer, "id = ?", order.DesignerID).Error; err != nil {
		log.Printf("🔥 Failed to load designer %s for assignment email: %v", order.DesignerID, err)
		return
	}

	notifications.SendEmail(designer.Name, designer.Email,
		"Your application has been accepted",
		fmt.Sprintf("<h1>Application Accepted</h1><p>Dear %s,</p><p>Your application for \"%s\" has been accepted. Please wait for the client to complete the payment before starting work.</p><p>Order price: $%.2f</p>", designer.Name, service.Title, order.Price))

	notifications.SendEmail(service.Client.Name, service.Client.Email,
		"A designer has been assigned to your service",
		fmt.Sprintf("<h1>Designer Assigned</h1><p>Dear %s,</p><p>%s has been assigned to \"%s\".</p><p><strong>Next step:</strong> complete the payment of $%.2f to start this project.</p>", service.Client.Name, designer.Name, service.Title, order.Price))

	websocket.Notify(service.ClientID, "order_created", order.ID.String(), "A designer has been assigned, payment required.")
	websocket.Notify(order.DesignerID, "order_created", order.ID.String(), "Your application was accepted.")
}
