package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PortfolioItem struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	DesignerID uuid.UUID  `gorm:"not null" json:"designer_id"`
	CategoryID *uuid.UUID `json:"category_id"`

	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	ImageURL    string `gorm:"type:text;not null" json:"image_url"`

	Designer User     `gorm:"foreignkey:DesignerID" json:"designer,omitempty"`
	Category Category `gorm:"foreignkey:CategoryID" json:"category,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *PortfolioItem) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
