package routes

import (
	"time"

	"github.com/desainhub/desainhub-api/handlers"
	"github.com/desainhub/desainhub-api/middleware"
	"github.com/desainhub/desainhub-api/ratelimit"
	"github.com/gofiber/fiber/v2"
)

func ServiceRoutes(app *fiber.App) {
	// Client side: posting and managing own requests.
	services := app.Group("/api/services", middleware.Protected(), middleware.ClientRequired())
	services.Post("/", handlers.CreateServiceRequest)
	services.Get("/", handlers.GetMyServiceRequests)
	services.Get("/:id", handlers.GetServiceRequest)
	services.Put("/:id", handlers.UpdateServiceRequest)
	services.Delete("/:id", handlers.DeleteServiceRequest)

	// Designer side: browsing, applying, withdrawing.
	designer := app.Group("/api/designer/services", middleware.Protected(), middleware.DesignerRequired())
	designer.Get("/", handlers.BrowseServiceRequests)
	designer.Get("/assignments", handlers.GetMyAssignments)
	designer.Get("/:id", handlers.GetServiceRequestForDesigner)
	designer.Post("/:id/apply", ratelimit.PerActor("apply", 30, time.Hour), handlers.ApplyForService)
	designer.Post("/:id/cancel", handlers.CancelService)
}
