package routes

import (
	"time"

	"github.com/desainhub/desainhub-api/handlers"
	"github.com/desainhub/desainhub-api/middleware"
	"github.com/desainhub/desainhub-api/ratelimit"
	"github.com/gofiber/fiber/v2"
)

func PaymentRoutes(app *fiber.App) {
	payments := app.Group("/api/payments")

	// The gateway calls this unauthenticated.
	payments.Post("/notification", handlers.HandleGatewayNotification)

	payments.Post("/token",
		middleware.Protected(),
		middleware.ClientRequired(),
		ratelimit.PerActor("snap_token", 20, time.Hour),
		handlers.GenerateSnapToken)

	payments.Get("/", middleware.Protected(), middleware.AdminRequired(), handlers.GetAllPayments)
}
