package routes

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/desainhub/desainhub-api/middleware"
	hub "github.com/desainhub/desainhub-api/websocket"
)

func WebsocketRoutes(app *fiber.App) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws", middleware.Protected(), websocket.New(handleConnection))
}

func handleConnection(conn *websocket.Conn) {
	token, ok := conn.Locals("user").(*jwt.Token)
	if !ok {
		conn.Close()
		return
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		conn.Close()
		return
	}
	raw, ok := claims["user_id"].(string)
	if !ok {
		conn.Close()
		return
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		conn.Close()
		return
	}

	client := &hub.Client{UserID: userID, Conn: conn}
	hub.Register <- client
	defer func() {
		hub.Unregister <- client
		conn.Close()
	}()

	// The stream is push-only; reads just detect the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
