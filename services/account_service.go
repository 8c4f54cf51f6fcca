package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/desainhub/desainhub-api/apperr"
	config "github.com/desainhub/desainhub-api/configs"
	"github.com/desainhub/desainhub-api/database"
	"github.com/desainhub/desainhub-api/models"
	"github.com/desainhub/desainhub-api/notifications"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	resetTokenTTL        = time.Hour
	verificationTokenTTL = 24 * time.Hour
)

// StartPasswordReset issues a one-hour reset token for the account and emails
// the reset link. The token is returned for the caller's benefit in tests; the
// HTTP layer never exposes it.
func StartPasswordReset(email string) (string, error) {
	var user models.User
	if err := database.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperr.Wrap(apperr.ErrNotFound, "no account with that email found")
		}
		return "", err
	}

	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)
	expires := time.Now().Add(resetTokenTTL)

	if err := database.DB.Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"reset_password_token":      token,
			"reset_password_expires_at": expires,
		}).Error; err != nil {
		return "", err
	}

	resetLink := config.ConfigOr("FRONTEND_URL", "http://localhost:3000") + "/reset-password/" + token
	go notifications.SendEmail(user.Name, user.Email,
		"Password Reset Request",
		fmt.Sprintf("<h1>Password Reset</h1><p>Dear %s,</p><p>Click the link below to reset your password:</p><a href=\"%s\">Reset Password</a><p>This link will expire in 1 hour.</p><p>If you did not request a password reset, please ignore this email.</p>", user.Name, resetLink))

	return token, nil
}

// ResetPassword consumes a reset token. The expiry check rides in the query so
// an expired token is indistinguishable from an unknown one.
func ResetPassword(token, newPassword string) error {
	if len(newPassword) < 8 {
		return apperr.Wrap(apperr.ErrValidation, "password must be at least 8 characters")
	}

	var user models.User
	if err := database.DB.
		Where("reset_password_token = ? AND reset_password_expires_at > ?", token, time.Now()).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Wrap(apperr.ErrValidation, "invalid or expired reset token")
		}
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return database.DB.Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"password":                  string(hashed),
			"reset_password_token":      nil,
			"reset_password_expires_at": nil,
		}).Error
}

// BuildEmailVerificationToken signs a short-lived token tying the verification
// link to one account. Reusing the JWT secret keeps the link stateless.
func BuildEmailVerificationToken(userID uuid.UUID) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID.String(),
		"purpose": "email_verify",
		"exp":     time.Now().Add(verificationTokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(config.Config("JWT_SECRET")))
}

// SendVerificationEmail mails the verification link for a fresh account.
// Fire-and-forget from registration.
func SendVerificationEmail(user models.User) {
	token, err := BuildEmailVerificationToken(user.ID)
	if err != nil {
		return
	}

	link := config.ConfigOr("FRONTEND_URL", "http://localhost:3000") + "/verify-email?token=" + token
	notifications.SendEmail(user.Name, user.Email,
		"Verify Your Email",
		fmt.Sprintf("<p>Dear %s,</p><p>Click <a href=\"%s\">here</a> to verify your email.</p>", user.Name, link))
}

// VerifyEmail consumes a verification token and flags the account verified.
// Verifying twice is a harmless no-op.
func VerifyEmail(tokenString string) (*models.User, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(config.Config("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return nil, apperr.Wrap(apperr.ErrValidation, "invalid or expired verification token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperr.Wrap(apperr.ErrValidation, "invalid or expired verification token")
	}
	purpose, _ := claims["purpose"].(string)
	rawID, _ := claims["user_id"].(string)
	if purpose != "email_verify" {
		return nil, apperr.Wrap(apperr.ErrValidation, "invalid or expired verification token")
	}
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrValidation, "invalid or expired verification token")
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Wrap(apperr.ErrNotFound, "user not found")
		}
		return nil, err
	}

	if !user.IsVerified {
		if err := database.DB.Model(&models.User{}).
			Where("id = ?", user.ID).
			Update("is_verified", true).Error; err != nil {
			return nil, err
		}
		user.IsVerified = true
	}
	return &user, nil
}
