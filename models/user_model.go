package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleClient   = "client"
	RoleDesigner = "designer"
	RoleAdmin    = "admin"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name     string    `gorm:"size:255;not null" json:"name"`
	Email    string    `gorm:"size:255;not null;unique" json:"email"`
	Password string    `gorm:"not null" json:"-"`
	Role     string    `gorm:"size:20;not null;default:'client'" json:"role"`

	ProfilePhotoURL *string `gorm:"size:255" json:"profile_photo_url"`
	IsVerified      bool    `gorm:"default:false" json:"is_verified"`

	ResetPasswordToken     *string    `gorm:"size:255;unique" json:"-"`
	ResetPasswordExpiresAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
