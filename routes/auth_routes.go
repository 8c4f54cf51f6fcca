package routes

import (
	"time"

	"github.com/desainhub/desainhub-api/handlers"
	"github.com/desainhub/desainhub-api/middleware"
	"github.com/desainhub/desainhub-api/ratelimit"
	"github.com/gofiber/fiber/v2"
)

func AuthRoutes(app *fiber.App) {
	auth := app.Group("/api/auth")

	auth.Post("/register", ratelimit.PerActor("register", 10, time.Hour), handlers.Register)
	auth.Post("/login", ratelimit.PerActor("login", 20, 15*time.Minute), handlers.Login)
	auth.Post("/forgot-password", ratelimit.PerActor("forgot_password", 5, time.Hour), handlers.ForgotPassword)
	auth.Post("/reset-password", handlers.ResetPassword)
	auth.Post("/verify-email", handlers.VerifyEmail)

	auth.Get("/me", middleware.Protected(), handlers.GetMe)
	auth.Put("/me", middleware.Protected(), handlers.UpdateProfile)
}
