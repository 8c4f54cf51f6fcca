package routes

import (
	"github.com/desainhub/desainhub-api/handlers"
	"github.com/desainhub/desainhub-api/middleware"
	"github.com/gofiber/fiber/v2"
)

func DeliverableRoutes(app *fiber.App) {
	deliverables := app.Group("/api/deliverables", middleware.Protected())

	deliverables.Post("/orders/:orderId", middleware.DesignerRequired(), handlers.SubmitDeliverable)
	deliverables.Get("/mine", middleware.DesignerRequired(), handlers.GetMyDeliverables)
	deliverables.Put("/:id", middleware.DesignerRequired(), handlers.ResubmitDeliverable)
	deliverables.Delete("/:id", middleware.DesignerRequired(), handlers.DeleteDeliverable)

	deliverables.Post("/:id/review", middleware.ClientRequired(), handlers.ReviewDeliverable)
	deliverables.Get("/:id/file", handlers.GetDeliverableFile)
}
