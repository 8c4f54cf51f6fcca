package routes

import (
	"github.com/desainhub/desainhub-api/handlers"
	"github.com/desainhub/desainhub-api/middleware"
	"github.com/gofiber/fiber/v2"
)

func OrderRoutes(app *fiber.App) {
	orders := app.Group("/api/orders", middleware.Protected())

	orders.Get("/", handlers.GetMyOrders)
	orders.Get("/paid", handlers.GetPaidOrders)
	orders.Get("/:id", handlers.GetOrder)
	orders.Patch("/:id/status", handlers.UpdateOrderStatus)

	orders.Get("/:orderId/deliverables", handlers.GetOrderDeliverables)
	orders.Get("/:orderId/payment", handlers.GetOrderPayment)
}
