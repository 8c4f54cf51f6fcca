package routes

import (
	"github.com/desainhub/desainhub-api/handlers"
	"github.com/desainhub/desainhub-api/middleware"
	"github.com/gofiber/fiber/v2"
)

func PortfolioRoutes(app *fiber.App) {
	portfolio := app.Group("/api/portfolio")

	portfolio.Get("/designers/:designerId", handlers.GetDesignerPortfolio)

	portfolio.Post("/", middleware.Protected(), middleware.DesignerRequired(), handlers.CreatePortfolioItem)
	portfolio.Put("/:id", middleware.Protected(), middleware.DesignerRequired(), handlers.UpdatePortfolioItem)
	portfolio.Delete("/:id", middleware.Protected(), middleware.DesignerRequired(), handlers.DeletePortfolioItem)
}
