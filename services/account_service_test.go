package services

import (
	"testing"
	"time"

	"github.com/desainhub/desainhub-api/apperr"
	"github.com/desainhub/desainhub-api/database"
	"github.com/desainhub/desainhub-api/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordResetRoundTrip(t *testing.T) {
	setupTestDB(t)
	user := makeUser(t, models.RoleClient)

	token, err := StartPasswordReset(user.Email)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	var reloaded models.User
	require.NoError(t, database.DB.First(&reloaded, "id = ?", user.ID).Error)
	require.NotNil(t, reloaded.ResetPasswordToken)
	assert.Equal(t, token, *reloaded.ResetPasswordToken)
	require.NotNil(t, reloaded.ResetPasswordExpiresAt)
	assert.True(t, reloaded.ResetPasswordExpiresAt.After(time.Now()))

	require.NoError(t, ResetPassword(token, "brand-new-password"))

	require.NoError(t, database.DB.First(&reloaded, "id = ?", user.ID).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(reloaded.Password), []byte("brand-new-password")))
	assert.Nil(t, reloaded.ResetPasswordToken)
	assert.Nil(t, reloaded.ResetPasswordExpiresAt)

	// A consumed token cannot be replayed.
	err = ResetPassword(token, "another-password")
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestStartPasswordResetUnknownEmail(t *testing.T) {
	setupTestDB(t)

	_, err := StartPasswordReset("nobody@example.com")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestResetPasswordRejectsExpiredToken(t *testing.T) {
	setupTestDB(t)
	user := makeUser(t, models.RoleClient)

	expired := time.Now().Add(-time.Minute)
	require.NoError(t, database.DB.Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"reset_password_token":      "stale-token",
			"reset_password_expires_at": expired,
		}).Error)

	err := ResetPassword("stale-token", "whatever-password")
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestResetPasswordRejectsShortPassword(t *testing.T) {
	setupTestDB(t)

	err := ResetPassword("any-token", "short")
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestVerifyEmailRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	setupTestDB(t)
	user := makeUser(t, models.RoleClient)
	require.False(t, user.IsVerified)

	token, err := BuildEmailVerificationToken(user.ID)
	require.NoError(t, err)

	verified, err := VerifyEmail(token)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)

	// Verifying again is a no-op, not an error.
	verified, err = VerifyEmail(token)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)
}

func TestVerifyEmailRejectsForeignTokens(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	setupTestDB(t)
	user := makeUser(t, models.RoleClient)

	_, err := VerifyEmail("not-a-token")
	require.ErrorIs(t, err, apperr.ErrValidation)

	// A session token signed with the same secret is not a verification
	// token.
	session := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID.String(),
		"role":    user.Role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := session.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = VerifyEmail(signed)
	require.ErrorIs(t, err, apperr.ErrValidation)

	var reloaded models.User
	require.NoError(t, database.DB.First(&reloaded, "id = ?", user.ID).Error)
	assert.False(t, reloaded.IsVerified)
}
