package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"
)

func protectedApp() *fiber.App {
	app := fiber.New()
	app.Get("/designer-only", Protected(), DesignerRequired(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	return app
}

func request(t *testing.T, app *fiber.App, secret string, claims jwt.MapClaims) *http.Response {
	t.Helper()

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/designer-only", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestRoleRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	app := protectedApp()
	exp := time.Now().Add(time.Hour).Unix()

	resp := request(t, app, "test-secret", jwt.MapClaims{"user_id": "u", "role": "designer", "exp": exp})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = request(t, app, "test-secret", jwt.MapClaims{"user_id": "u", "role": "client", "exp": exp})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	// A validly-signed token without a role claim is rejected, not a panic.
	resp = request(t, app, "test-secret", jwt.MapClaims{"user_id": "u", "exp": exp})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = request(t, app, "test-secret", jwt.MapClaims{"user_id": "u", "role": 7, "exp": exp})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = request(t, app, "wrong-secret", jwt.MapClaims{"user_id": "u", "role": "designer", "exp": exp})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProtectedRejectsMissingToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	app := protectedApp()

	req := httptest.NewRequest(http.MethodGet, "/designer-only", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
