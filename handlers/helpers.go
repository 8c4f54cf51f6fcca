package handlers

import (
	"github.com/desainhub/desainhub-api/apperr"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// fail maps a service error onto the HTTP response through its apperr kind.
func fail(c *fiber.Ctx, err error) error {
	return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{
		"error": err.Error(),
		"kind":  apperr.Kind(err),
	})
}

func parseUUIDFrom(value, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, apperr.Wrap(apperr.ErrValidation, "invalid "+field)
	}
	return id, nil
}

// actorID extracts the authenticated user from the JWT. A token missing the
// claim yields uuid.Nil, which holds no capability on any resource.
func actorID(c *fiber.Ctx) uuid.UUID {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return uuid.Nil
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil
	}
	raw, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}
