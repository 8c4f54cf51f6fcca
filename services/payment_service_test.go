package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/desainhub/desainhub-api/apperr"
	"github.com/desainhub/desainhub-api/database"
	"github.com/desainhub/desainhub-api/models"
	"github.com/desainhub/desainhub-api/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeUnpaidOrder(t *testing.T) models.Order {
	t.Helper()

	client := makeUser(t, models.RoleClient)
	designer := makeUser(t, models.RoleDesigner)
	service := makeService(t, client, 500)

	order, err := ApplyForService(service.ID, designer.ID)
	require.NoError(t, err)
	return *order
}

func notification(ref, status, fraud string) (GatewayNotification, []byte) {
	n := GatewayNotification{
		OrderID:           ref,
		TransactionID:     "tx-" + status,
		TransactionStatus: status,
		GrossAmount:       "500.00",
		PaymentType:       "bank_transfer",
		FraudStatus:       fraud,
	}
	raw, _ := json.Marshal(n)
	return n, raw
}

func TestReconcileSettlementPaysOrderExactlyOnce(t *testing.T) {
	setupTestDB(t)
	order := makeUnpaidOrder(t)
	ref := utils.BuildOrderReference(order.ID)

	n, raw := notification(ref, models.TxStatusSettlement, "")
	payment, settledNow, err := ReconcileNotification(n, raw)
	require.NoError(t, err)
	assert.True(t, settledNow)
	assert.Equal(t, models.TxStatusSettlement, payment.TransactionStatus)
	assert.EqualValues(t, 500, payment.Amount)

	var reloaded models.Order
	require.NoError(t, database.DB.First(&reloaded, "id = ?", order.ID).Error)
	assert.True(t, reloaded.IsPaid)
	assert.Equal(t, models.OrderStatusInProgress, reloaded.Status)

	// Replayed notification: no second settlement, no second payment row.
	_, settledNow, err = ReconcileNotification(n, raw)
	require.NoError(t, err)
	assert.False(t, settledNow)

	var rows int64
	require.NoError(t, database.DB.Model(&models.Payment{}).
		Where("order_id = ?", order.ID).Count(&rows).Error)
	assert.EqualValues(t, 1, rows)
}

func TestReconcilePendingThenSettlementUpdatesSameRow(t *testing.T) {
	setupTestDB(t)
	order := makeUnpaidOrder(t)
	ref := utils.BuildOrderReference(order.ID)

	n, raw := notification(ref, models.TxStatusPending, "")
	payment, settledNow, err := ReconcileNotification(n, raw)
	require.NoError(t, err)
	assert.False(t, settledNow)
	assert.Equal(t, models.TxStatusPending, payment.TransactionStatus)

	var reloaded models.Order
	require.NoError(t, database.DB.First(&reloaded, "id = ?", order.ID).Error)
	assert.False(t, reloaded.IsPaid)

	n, raw = notification(ref, models.TxStatusSettlement, "")
	_, settledNow, err = ReconcileNotification(n, raw)
	require.NoError(t, err)
	assert.True(t, settledNow)

	var rows int64
	require.NoError(t, database.DB.Model(&models.Payment{}).
		Where("order_id = ?", order.ID).Count(&rows).Error)
	assert.EqualValues(t, 1, rows)
}

func TestReconcileCaptureNeedsFraudAccept(t *testing.T) {
	setupTestDB(t)
	order := makeUnpaidOrder(t)
	ref := utils.BuildOrderReference(order.ID)

	n, raw := notification(ref, models.TxStatusCapture, "challenge")
	_, settledNow, err := ReconcileNotification(n, raw)
	require.NoError(t, err)
	assert.False(t, settledNow)

	n, raw = notification(ref, models.TxStatusCapture, "accept")
	_, settledNow, err = ReconcileNotification(n, raw)
	require.NoError(t, err)
	assert.True(t, settledNow)
}

func TestReconcileLateStatusNeverUnpaysOrder(t *testing.T) {
	setupTestDB(t)
	order := makeUnpaidOrder(t)
	ref := utils.BuildOrderReference(order.ID)

	n, raw := notification(ref, models.TxStatusSettlement, "")
	_, _, err := ReconcileNotification(n, raw)
	require.NoError(t, err)

	// A straggling expiry updates the projection but the paid flag holds.
	n, raw = notification(ref, models.TxStatusExpire, "")
	payment, settledNow, err := ReconcileNotification(n, raw)
	require.NoError(t, err)
	assert.False(t, settledNow)
	assert.Equal(t, models.TxStatusExpire, payment.TransactionStatus)

	var reloaded models.Order
	require.NoError(t, database.DB.First(&reloaded, "id = ?", order.ID).Error)
	assert.True(t, reloaded.IsPaid)
	assert.Equal(t, models.OrderStatusInProgress, reloaded.Status)
}

func TestReconcileRejectsBadReferences(t *testing.T) {
	setupTestDB(t)

	n, raw := notification("INVOICE-123", models.TxStatusSettlement, "")
	_, _, err := ReconcileNotification(n, raw)
	require.ErrorIs(t, err, apperr.ErrValidation)

	ref := utils.BuildOrderReference(makeUnpaidOrder(t).ID)
	n, raw = notification(ref, models.TxStatusSettlement, "")
	n.OrderID = "ORDER-not-a-uuid-123"
	_, _, err = ReconcileNotification(n, raw)
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestReconcileUnknownOrder(t *testing.T) {
	setupTestDB(t)
	order := makeUnpaidOrder(t)

	require.NoError(t, database.DB.Delete(&models.Order{}, "id = ?", order.ID).Error)

	n, raw := notification(utils.BuildOrderReference(order.ID), models.TxStatusSettlement, "")
	_, _, err := ReconcileNotification(n, raw)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGetPaymentByOrderIDReturnsLatest(t *testing.T) {
	setupTestDB(t)
	order := makeUnpaidOrder(t)

	_, err := GetPaymentByOrderID(order.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	first := models.Payment{
		OrderID:           order.ID,
		ClientID:          order.ClientID,
		Amount:            500,
		TransactionStatus: models.TxStatusExpire,
		GatewayOrderID:    utils.BuildOrderReference(order.ID) + "-a",
		CreatedAt:         time.Now().Add(-time.Hour),
	}
	require.NoError(t, database.DB.Create(&first).Error)

	second := models.Payment{
		OrderID:           order.ID,
		ClientID:          order.ClientID,
		Amount:            500,
		TransactionStatus: models.TxStatusPending,
		GatewayOrderID:    utils.BuildOrderReference(order.ID) + "-b",
	}
	require.NoError(t, database.DB.Create(&second).Error)

	latest, err := GetPaymentByOrderID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, second.GatewayOrderID, latest.GatewayOrderID)
}
