package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DeliverableStatusPending  = "PENDING"
	DeliverableStatusApproved = "APPROVED"
	DeliverableStatusRejected = "REJECTED"
)

// Deliverable is a designer's submitted work for an order. APPROVED is
// terminal: no resubmission, re-review or deletion afterwards.
type Deliverable struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	OrderID    uuid.UUID `gorm:"not null" json:"order_id"`
	DesignerID uuid.UUID `gorm:"not null" json:"designer_id"`

	Title       string `gorm:"size:255" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	FileURL     string `gorm:"type:text;not null" json:"file_url"`
	FileHandle  string `gorm:"size:512" json:"-"`

	Status      string     `gorm:"size:20;not null;default:'PENDING'" json:"status"`
	SubmittedAt time.Time  `json:"submitted_at"`
	ReviewedAt  *time.Time `json:"reviewed_at"`
	Feedback    *string    `gorm:"type:text" json:"feedback"`

	Order    Order `gorm:"foreignkey:OrderID" json:"order,omitempty"`
	Designer User  `gorm:"foreignkey:DesignerID" json:"designer,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (d *Deliverable) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.SubmittedAt.IsZero() {
		d.SubmittedAt = time.Now()
	}
	return nil
}
