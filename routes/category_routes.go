package routes

import (
	"github.com/desainhub/desainhub-api/handlers"
	"github.com/desainhub/desainhub-api/middleware"
	"github.com/gofiber/fiber/v2"
)

func CategoryRoutes(app *fiber.App) {
	categories := app.Group("/api/categories")

	categories.Get("/", handlers.GetCategories)
	categories.Get("/:id", handlers.GetCategory)

	categories.Post("/", middleware.Protected(), middleware.AdminRequired(), handlers.CreateCategory)
	categories.Put("/:id", middleware.Protected(), middleware.AdminRequired(), handlers.UpdateCategory)
	categories.Delete("/:id", middleware.Protected(), middleware.AdminRequired(), handlers.DeleteCategory)
}
