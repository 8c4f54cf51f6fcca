package services

import (
	"testing"
	"time"

	"github.com/desainhub/desainhub-api/apperr"
	"github.com/desainhub/desainhub-api/database"
	"github.com/desainhub/desainhub-api/models"
	"github.com/desainhub/desainhub-api/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func file(name string) storage.StoredFile {
	return storage.StoredFile{
		URL:    "http://files.local/deliverables/" + name,
		Handle: "h-" + name,
	}
}

func TestSubmitDeliverableMovesOrderToRevision(t *testing.T) {
	setupTestDB(t)
	order, _, designer := makeActiveOrder(t, 3)

	deliverable, err := SubmitDeliverable(order.ID, designer.ID, "Draft 1", "First concepts", file("draft1.zip"))
	require.NoError(t, err)
	assert.Equal(t, models.DeliverableStatusPending, deliverable.Status)
	assert.False(t, deliverable.SubmittedAt.IsZero())

	var reloaded models.Order
	require.NoError(t, database.DB.First(&reloaded, "id = ?", order.ID).Error)
	assert.Equal(t, models.OrderStatusRevision, reloaded.Status)
	assert.Equal(t, 0, reloaded.RevisionCount)
}

func TestSubmitDeliverableOnlyAssignedDesigner(t *testing.T) {
	setupTestDB(t)
	order, client, _ := makeActiveOrder(t, 3)
	other := makeUser(t, models.RoleDesigner)

	_, err := SubmitDeliverable(order.ID, other.ID, "Draft", "", file("x.zip"))
	require.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = SubmitDeliverable(order.ID, client.ID, "Draft", "", file("x.zip"))
	require.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestReviewRejectThenResubmitThenApprove(t *testing.T) {
	store := setupTestDB(t)
	order, client, designer := makeActiveOrder(t, 3)

	deliverable, err := SubmitDeliverable(order.ID, designer.ID, "Draft 1", "", file("draft1.zip"))
	require.NoError(t, err)

	// Client rejects: one revision cycle is counted.
	reviewed, err := ReviewDeliverable(deliverable.ID, client.ID, models.DeliverableStatusRejected, "Logo too small")
	require.NoError(t, err)
	assert.Equal(t, models.DeliverableStatusRejected, reviewed.Status)
	require.NotNil(t, reviewed.Feedback)
	assert.Equal(t, "Logo too small", *reviewed.Feedback)
	require.NotNil(t, reviewed.ReviewedAt)

	var reloadedOrder models.Order
	require.NoError(t, database.DB.First(&reloadedOrder, "id = ?", order.ID).Error)
	assert.Equal(t, models.OrderStatusRevision, reloadedOrder.Status)
	assert.Equal(t, 1, reloadedOrder.RevisionCount)

	// Designer resubmits with a new file; the old one is released.
	resubmitted, err := ResubmitDeliverable(deliverable.ID, designer.ID, "Draft 2", "Bigger logo", &storage.StoredFile{
		URL: "http://files.local/deliverables/draft2.zip", Handle: "h-draft2.zip",
	})
	require.NoError(t, err)
	assert.Equal(t, models.DeliverableStatusPending, resubmitted.Status)
	assert.Equal(t, "h-draft2.zip", resubmitted.FileHandle)
	assert.Nil(t, resubmitted.ReviewedAt)

	require.Eventually(t, func() bool {
		return store.wasDeleted("h-draft1.zip")
	}, time.Second, 10*time.Millisecond)

	// Approval completes the order.
	approved, err := ReviewDeliverable(deliverable.ID, client.ID, models.DeliverableStatusApproved, "")
	require.NoError(t, err)
	assert.Equal(t, models.DeliverableStatusApproved, approved.Status)

	require.NoError(t, database.DB.First(&reloadedOrder, "id = ?", order.ID).Error)
	assert.Equal(t, models.OrderStatusCompleted, reloadedOrder.Status)
	assert.Equal(t, 1, reloadedOrder.RevisionCount)
}

func TestApprovedDeliverableIsImmutable(t *testing.T) {
	setupTestDB(t)
	order, client, designer := makeActiveOrder(t, 3)

	deliverable, err := SubmitDeliverable(order.ID, designer.ID, "Final", "", file("final.zip"))
	require.NoError(t, err)

	_, err = ReviewDeliverable(deliverable.ID, client.ID, models.DeliverableStatusApproved, "")
	require.NoError(t, err)

	_, err = ReviewDeliverable(deliverable.ID, client.ID, models.DeliverableStatusRejected, "changed my mind")
	require.ErrorIs(t, err, apperr.ErrConflict)

	_, err = ResubmitDeliverable(deliverable.ID, designer.ID, "v2", "", nil)
	require.ErrorIs(t, err, apperr.ErrConflict)

	err = DeleteDeliverable(deliverable.ID, designer.ID)
	require.ErrorIs(t, err, apperr.ErrConflict)
}

func TestReviewValidatesDecision(t *testing.T) {
	setupTestDB(t)
	order, client, designer := makeActiveOrder(t, 3)

	deliverable, err := SubmitDeliverable(order.ID, designer.ID, "Draft", "", file("d.zip"))
	require.NoError(t, err)

	_, err = ReviewDeliverable(deliverable.ID, client.ID, "approved", "")
	require.ErrorIs(t, err, apperr.ErrValidation)

	// Only the client reviews.
	_, err = ReviewDeliverable(deliverable.ID, designer.ID, models.DeliverableStatusRejected, "")
	require.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestExhaustedRevisionsForceCompleteOrder(t *testing.T) {
	setupTestDB(t)
	order, client, designer := makeActiveOrder(t, 2)

	for i := 0; i < 2; i++ {
		deliverable, err := SubmitDeliverable(order.ID, designer.ID, "Draft", "", file("d.zip"))
		require.NoError(t, err)

		_, err = ReviewDeliverable(deliverable.ID, client.ID, models.DeliverableStatusRejected, "not there yet")
		require.NoError(t, err)

		// Put the order back to work for the next cycle, mirroring the
		// designer resuming after a rejection.
		if i == 0 {
			require.NoError(t, database.DB.Model(&models.Order{}).
				Where("id = ?", order.ID).
				Update("status", models.OrderStatusInProgress).Error)
		}
	}

	var reloaded models.Order
	require.NoError(t, database.DB.First(&reloaded, "id = ?", order.ID).Error)
	assert.Equal(t, 2, reloaded.RevisionCount)
	assert.Equal(t, models.OrderStatusCompleted, reloaded.Status)
}

func TestThirdRejectionAtDefaultCapCompletesOrder(t *testing.T) {
	setupTestDB(t)
	order, client, designer := makeActiveOrder(t, models.DefaultMaxRevisions)

	deliverable, err := SubmitDeliverable(order.ID, designer.ID, "Draft", "", file("d.zip"))
	require.NoError(t, err)

	var reloaded models.Order
	for i := 1; i <= models.DefaultMaxRevisions; i++ {
		_, err = ReviewDeliverable(deliverable.ID, client.ID, models.DeliverableStatusRejected, "still not right")
		require.NoError(t, err)

		require.NoError(t, database.DB.First(&reloaded, "id = ?", order.ID).Error)
		assert.Equal(t, i, reloaded.RevisionCount)
		if i < models.DefaultMaxRevisions {
			assert.Equal(t, models.OrderStatusRevision, reloaded.Status)
		}
	}

	assert.Equal(t, models.OrderStatusCompleted, reloaded.Status)
}

func TestDeleteDeliverableOnlyWhilePending(t *testing.T) {
	store := setupTestDB(t)
	order, client, designer := makeActiveOrder(t, 3)

	deliverable, err := SubmitDeliverable(order.ID, designer.ID, "Draft", "", file("pending.zip"))
	require.NoError(t, err)

	require.NoError(t, DeleteDeliverable(deliverable.ID, designer.ID))
	require.Eventually(t, func() bool {
		return store.wasDeleted("h-pending.zip")
	}, time.Second, 10*time.Millisecond)

	// A reviewed deliverable can no longer be deleted.
	deliverable, err = SubmitDeliverable(order.ID, designer.ID, "Draft 2", "", file("reviewed.zip"))
	require.NoError(t, err)
	_, err = ReviewDeliverable(deliverable.ID, client.ID, models.DeliverableStatusRejected, "nope")
	require.NoError(t, err)

	err = DeleteDeliverable(deliverable.ID, designer.ID)
	require.ErrorIs(t, err, apperr.ErrConflict)
}
