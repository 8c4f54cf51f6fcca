package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/desainhub/desainhub-api/apperr"
	"github.com/desainhub/desainhub-api/authz"
	"github.com/desainhub/desainhub-api/database"
	"github.com/desainhub/desainhub-api/models"
	"github.com/desainhub/desainhub-api/notifications"
	"github.com/desainhub/desainhub-api/storage"
	"github.com/desainhub/desainhub-api/websocket"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SubmitDeliverable records uploaded work for an order. The file must already
// be stored; on failure here the caller releases it.
func SubmitDeliverable(orderID, designerID uuid.UUID, title, description string, file storage.StoredFile) (*models.Deliverable, error) {
	var order models.Order
	var deliverable models.Deliverable

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Wrap(apperr.ErrNotFound, "order not found")
			}
			return err
		}

		if err := authz.Authorize(designerID, &order, authz.ActionSubmit); err != nil {
			return err
		}

		deliverable = models.Deliverable{
			OrderID:     orderID,
			DesignerID:  designerID,
			Title:       title,
			Description: description,
			FileURL:     file.URL,
			FileHandle:  file.Handle,
			Status:      models.DeliverableStatusPending,
			SubmittedAt: time.Now(),
		}
		if err := tx.Create(&deliverable).Error; err != nil {
			return err
		}

		// A pending deliverable means the client has something to review.
		return tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, models.OrderStatusInProgress).
			Update("status", models.OrderStatusRevision).Error
	})
	if err != nil {
		return nil, err
	}

	websocket.Notify(order.ClientID, "deliverable_submitted", order.ID.String(), "A new deliverable is waiting for your review.")

	return &deliverable, nil
}

// ResubmitDeliverable replaces a pending or rejected submission. The old file
// is released only after the new reference is committed, so an upload failure
// never leaves the deliverable without a retrievable file.
func ResubmitDeliverable(deliverableID, designerID uuid.UUID, title, description string, newFile *storage.StoredFile) (*models.Deliverable, error) {
	var deliverable models.Deliverable
	var oldHandle string

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&deliverable, "id = ?", deliverableID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Wrap(apperr.ErrNotFound, "deliverable not found")
			}
			return err
		}

		var order models.Order
		if err := tx.First(&order, "id = ?", deliverable.OrderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Wrap(apperr.ErrNotFound, "associated order not found")
			}
			return err
		}

		if err := authz.Authorize(designerID, &order, authz.ActionModify); err != nil {
			return err
		}

		if deliverable.Status == models.DeliverableStatusApproved {
			return apperr.Wrap(apperr.ErrConflict, "cannot update an approved deliverable")
		}

		updates := map[string]interface{}{
			"status":       models.DeliverableStatusPending,
			"submitted_at": time.Now(),
			"reviewed_at":  nil,
		}
		if title != "" {
			updates["title"] = title
		}
		if description != "" {
			updates["description"] = description
		}
		if newFile != nil {
			oldHandle = deliverable.FileHandle
			updates["file_url"] = newFile.URL
			updates["file_handle"] = newFile.Handle
		}

		// The status guard also covers a concurrent approval landing between
		// the read above and this write.
		res := tx.Model(&models.Deliverable{}).
			Where("id = ? AND status <> ?", deliverableID, models.DeliverableStatusApproved).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.Wrap(apperr.ErrConflict, "cannot update an approved deliverable")
		}

		return tx.First(&deliverable, "id = ?", deliverableID).Error
	})
	if err != nil {
		return nil, err
	}

	if oldHandle != "" && oldHandle != deliverable.FileHandle {
		go releaseFile(oldHandle)
	}

	return &deliverable, nil
}

// ReviewDeliverable applies the client's decision. Approval completes the
// order; rejection counts a revision cycle and, once the order's revision
// budget is exhausted, force-completes it instead of looping forever.
func ReviewDeliverable(deliverableID, clientID uuid.UUID, decision, feedback string) (*models.Deliverable, error) {
	if decision != models.DeliverableStatusApproved && decision != models.DeliverableStatusRejected {
		return nil, apperr.Wrap(apperr.ErrValidation, "decision must be either APPROVED or REJECTED")
	}

	var deliverable models.Deliverable
	var order models.Order

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&deliverable, "id = ?", deliverableID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Wrap(apperr.ErrNotFound, "deliverable not found")
			}
			return err
		}

		if err := tx.First(&order, "id = ?", deliverable.OrderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Wrap(apperr.ErrNotFound, "associated order not found")
			}
			return err
		}

		if err := authz.Authorize(clientID, &order, authz.ActionReview); err != nil {
			return err
		}

		if deliverable.Status == models.DeliverableStatusApproved {
			return apperr.Wrap(apperr.ErrConflict, "deliverable has already been approved")
		}

		res := tx.Model(&models.Deliverable{}).
			Where("id = ? AND status <> ?", deliverableID, models.DeliverableStatusApproved).
			Updates(map[string]interface{}{
				"status":      decision,
				"reviewed_at": time.Now(),
				"feedback":    feedback,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.Wrap(apperr.ErrConflict, "deliverable has already been approved")
		}

		if decision == models.DeliverableStatusApproved {
			if err := tx.Model(&models.Order{}).
				Where("id = ?", order.ID).
				Update("status", models.OrderStatusCompleted).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Model(&models.Order{}).
				Where("id = ?", order.ID).
				Updates(map[string]interface{}{
					"status":         models.OrderStatusRevision,
					"revision_count": gorm.Expr("revision_count + 1"),
				}).Error; err != nil {
				return err
			}

			if err := tx.First(&order, "id = ?", order.ID).Error; err != nil {
				return err
			}
			if order.RevisionCount >= order.MaxRevisions {
				if err := tx.Model(&models.Order{}).
					Where("id = ?", order.ID).
					Update("status", models.OrderStatusCompleted).Error; err != nil {
					return err
				}
			}
		}

		if err := tx.First(&order, "id = ?", order.ID).Error; err != nil {
			return err
		}
		return tx.First(&deliverable, "id = ?", deliverableID).Error
	})
	if err != nil {
		return nil, err
	}

	go notifyReview(database.DB, deliverable, order)

	return &deliverable, nil
}

// DeleteDeliverable removes a submission that has not been reviewed yet.
func DeleteDeliverable(deliverableID, designerID uuid.UUID) error {
	var handle string

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var deliverable models.Deliverable
		if err := tx.First(&deliverable, "id = ?", deliverableID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Wrap(apperr.ErrNotFound, "deliverable not found")
			}
			return err
		}

		var order models.Order
		if err := tx.First(&order, "id = ?", deliverable.OrderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Wrap(apperr.ErrNotFound, "associated order not found")
			}
			return err
		}

		if err := authz.Authorize(designerID, &order, authz.ActionModify); err != nil {
			return err
		}

		if deliverable.Status != models.DeliverableStatusPending {
			return apperr.Wrap(apperr.ErrConflict, "cannot delete a deliverable that has been reviewed")
		}

		handle = deliverable.FileHandle
		return tx.Delete(&deliverable).Error
	})
	if err != nil {
		return err
	}

	go releaseFile(handle)
	return nil
}

func notifyReview(db *gorm.DB, deliverable models.Deliverable, order models.Order) {
	var designer models.User
	if err := db.First(&designer, "id = ?", order.DesignerID).Error; err != nil {
		return
	}

	if deliverable.Status == models.DeliverableStatusApproved {
		notifications.SendEmail(designer.Name, designer.Email,
			"Your deliverable has been approved",
			fmt.Sprintf("<h1>Deliverable Approved</h1><p>Dear %s,</p><p>The client approved your submission and the order is now completed. Great work!</p>", designer.Name))
		websocket.Notify(order.DesignerID, "deliverable_approved", order.ID.String(), "Your deliverable was approved.")
		return
	}

	feedback := ""
	if deliverable.Feedback != nil {
		feedback = *deliverable.Feedback
	}
	notifications.SendEmail(designer.Name, designer.Email,
		"Your deliverable needs revision",
		fmt.Sprintf("<h1>Revision Requested</h1><p>Dear %s,</p><p>The client rejected your submission.</p><blockquote>%s</blockquote><p>Revision %d of %d.</p>", designer.Name, feedback, order.RevisionCount, order.MaxRevisions))
	websocket.Notify(order.DesignerID, "deliverable_rejected", order.ID.String(), "Your deliverable was rejected, revision requested.")
}
