package services

import (
	"errors"

	"github.com/desainhub/desainhub-api/apperr"
	"github.com/desainhub/desainhub-api/authz"
	"github.com/desainhub/desainhub-api/database"
	"github.com/desainhub/desainhub-api/models"
	"github.com/desainhub/desainhub-api/websocket"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetOrderForActor loads an order if the actor is one of its parties.
func GetOrderForActor(orderID, actorID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := database.DB.
		Preload("Service").
		Preload("Client").
		Preload("Designer").
		First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Wrap(apperr.ErrNotFound, "order not found")
		}
		return nil, err
	}

	if err := authz.Authorize(actorID, &order, authz.ActionView); err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrderStatus moves an order between work states on behalf of one of
// its parties. Entering revision from in_progress counts one revision cycle;
// repeated calls while already in revision do not re-count.
func UpdateOrderStatus(orderID uuid.UUID, newStatus string, actorID uuid.UUID) (*models.Order, error) {
	if !models.ValidTransitionStatus(newStatus) {
		return nil, apperr.Wrap(apperr.ErrValidation, "invalid status value")
	}

	var order models.Order
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Wrap(apperr.ErrNotFound, "order not found")
			}
			return err
		}

		if err := authz.Authorize(actorID, &order, authz.ActionTransition); err != nil {
			return err
		}

		if newStatus == models.OrderStatusRevision {
			res := tx.Model(&models.Order{}).
				Where("id = ? AND status = ?", orderID, models.OrderStatusInProgress).
				Updates(map[string]interface{}{
					"status":         models.OrderStatusRevision,
					"revision_count": gorm.Expr("revision_count + 1"),
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				return tx.First(&order, "id = ?", orderID).Error
			}
		}

		if err := tx.Model(&models.Order{}).
			Where("id = ?", orderID).
			Update("status", newStatus).Error; err != nil {
			return err
		}
		return tx.First(&order, "id = ?", orderID).Error
	})
	if err != nil {
		return nil, err
	}

	counterpart := order.DesignerID
	if actorID == order.DesignerID {
		counterpart = order.ClientID
	}
	websocket.Notify(counterpart, "order_status", order.ID.String(), "Order status changed to "+order.Status)

	return &order, nil
}

// MarkOrderPaid flips the paid flag exactly once; the guarded update makes a
// replayed settlement a no-op. It reports whether this call applied the flip,
// so the caller fires paid side effects at most once.
func MarkOrderPaid(tx *gorm.DB, orderID uuid.UUID) (bool, error) {
	res := tx.Model(&models.Order{}).
		Where("id = ? AND is_paid = ?", orderID, false).
		Updates(map[string]interface{}{
			"is_paid": true,
			"status":  models.OrderStatusInProgress,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
