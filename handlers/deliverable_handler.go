package handlers

import (
	"context"
	"log"
	"time"

	"github.com/desainhub/desainhub-api/apperr"
	"github.com/desainhub/desainhub-api/database"
	"github.com/desainhub/desainhub-api/models"
	"github.com/desainhub/desainhub-api/services"
	"github.com/desainhub/desainhub-api/storage"
	"github.com/gofiber/fiber/v2"
)

const uploadTimeout = 60 * time.Second

func uploadDeliverableFile(c *fiber.Ctx) (*storage.StoredFile, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrValidation, "a deliverable file is required")
	}

	if services.FileStore == nil {
		return nil, apperr.Wrap(apperr.ErrGateway, "file storage is not configured")
	}

	ctx, cancel := context.WithTimeout(c.Context(), uploadTimeout)
	defer cancel()

	stored, err := services.FileStore.Upload(ctx, fileHeader, services.DeliverableFolder)
	if err != nil {
		log.Printf("🔥 Deliverable upload failed: %v", err)
		return nil, apperr.Wrap(apperr.ErrGateway, "failed to store the deliverable file")
	}
	return stored, nil
}

// discardUpload removes a freshly stored file whose database record never made
// it in.
func discardUpload(stored *storage.StoredFile) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := services.FileStore.Delete(ctx, stored.Handle); err != nil {
		log.Printf("🔥 Failed to discard orphaned upload %s: %v", stored.Handle, err)
	}
}

// SubmitDeliverable stores the uploaded file first and only then records the
// submission, discarding the upload if that fails.
func SubmitDeliverable(c *fiber.Ctx) error {
	orderID, err := parseUUIDParam(c, "orderId")
	if err != nil {
		return fail(c, err)
	}

	title := c.FormValue("title")
	description := c.FormValue("description")

	stored, err := uploadDeliverableFile(c)
	if err != nil {
		return fail(c, err)
	}

	deliverable, err := services.SubmitDeliverable(orderID, actorID(c), title, description, *stored)
	if err != nil {
		go discardUpload(stored)
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "Deliverable submitted for review",
		"deliverable": deliverable,
	})
}

// ResubmitDeliverable updates a pending or rejected submission. The file part
// is optional; metadata-only resubmissions keep the existing file.
func ResubmitDeliverable(c *fiber.Ctx) error {
	deliverableID, err := parseUUIDParam(c, "id")
	if err != nil {
		return fail(c, err)
	}

	title := c.FormValue("title")
	description := c.FormValue("description")

	var stored *storage.StoredFile
	if _, ferr := c.FormFile("file"); ferr == nil {
		stored, err = uploadDeliverableFile(c)
		if err != nil {
			return fail(c, err)
		}
	}

	deliverable, err := services.ResubmitDeliverable(deliverableID, actorID(c), title, description, stored)
	if err != nil {
		if stored != nil {
			go discardUpload(stored)
		}
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"message":     "Deliverable resubmitted for review",
		"deliverable": deliverable,
	})
}

type ReviewDeliverableInput struct {
	Decision string `json:"decision" validate:"required,oneof=APPROVED REJECTED"`
	Feedback string `json:"feedback"`
}

func ReviewDeliverable(c *fiber.Ctx) error {
	deliverableID, err := parseUUIDParam(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var input ReviewDeliverableInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	deliverable, err := services.ReviewDeliverable(deliverableID, actorID(c), input.Decision, input.Feedback)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"message":     "Review recorded",
		"deliverable": deliverable,
	})
}

func DeleteDeliverable(c *fiber.Ctx) error {
	deliverableID, err := parseUUIDParam(c, "id")
	if err != nil {
		return fail(c, err)
	}

	if err := services.DeleteDeliverable(deliverableID, actorID(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Deliverable deleted"})
}

// GetOrderDeliverables lists an order's submissions for either party.
func GetOrderDeliverables(c *fiber.Ctx) error {
	orderID, err := parseUUIDParam(c, "orderId")
	if err != nil {
		return fail(c, err)
	}

	// Visibility rides on order access.
	if _, err := services.GetOrderForActor(orderID, actorID(c)); err != nil {
		return fail(c, err)
	}

	var deliverables []models.Deliverable
	if err := database.DB.
		Where("order_id = ?", orderID).
		Order("submitted_at desc").
		Find(&deliverables).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch deliverables"})
	}
	return c.JSON(deliverables)
}

// GetMyDeliverables lists everything the designer has submitted.
func GetMyDeliverables(c *fiber.Ctx) error {
	query := database.DB.
		Preload("Order.Service").
		Where("designer_id = ?", actorID(c))

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var deliverables []models.Deliverable
	if err := query.Order("submitted_at desc").Find(&deliverables).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch deliverables"})
	}
	return c.JSON(deliverables)
}

// GetDeliverableFile returns the stored file URL for a party to the order.
func GetDeliverableFile(c *fiber.Ctx) error {
	deliverableID, err := parseUUIDParam(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var deliverable models.Deliverable
	if err := database.DB.First(&deliverable, "id = ?", deliverableID).Error; err != nil {
		return fail(c, apperr.Wrap(apperr.ErrNotFound, "deliverable not found"))
	}

	if _, err := services.GetOrderForActor(deliverable.OrderID, actorID(c)); err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"file_url": deliverable.FileURL})
}
