package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/desainhub/desainhub-api/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func whoamiApp() *fiber.App {
	app := fiber.New()
	app.Get("/whoami", middleware.Protected(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"id": actorID(c).String()})
	})
	return app
}

func TestActorIDExtractsUserID(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	app := whoamiApp()

	userID := uuid.New()
	token := signToken(t, "test-secret", jwt.MapClaims{
		"user_id": userID.String(),
		"role":    "client",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, userID.String(), body["id"])
}

func TestActorIDToleratesMissingOrMalformedClaim(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	app := whoamiApp()

	// Validly signed tokens that lack or mangle the user_id claim must not
	// panic; they resolve to the nil ID, which holds no capabilities.
	tokens := []jwt.MapClaims{
		{"role": "client", "exp": time.Now().Add(time.Hour).Unix()},
		{"user_id": 12345, "role": "client", "exp": time.Now().Add(time.Hour).Unix()},
		{"user_id": "not-a-uuid", "role": "client", "exp": time.Now().Add(time.Hour).Unix()},
	}

	for _, claims := range tokens {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, "test-secret", claims))
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, uuid.Nil.String(), body["id"])
	}
}
