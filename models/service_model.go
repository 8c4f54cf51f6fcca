package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ServiceStatusOpen      = "open"
	ServiceStatusAssigned  = "assigned"
	ServiceStatusCompleted = "completed"
	ServiceStatusCancelled = "cancelled"
)

// ServiceRequest is a client's posted job. Once it leaves "open" the budget and
// deadline are frozen and no further applications are accepted.
type ServiceRequest struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	ClientID    uuid.UUID  `gorm:"not null" json:"client_id"`
	CategoryID  uuid.UUID  `gorm:"not null" json:"category_id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text;not null" json:"description"`
	Budget      float64    `gorm:"type:numeric(12,2);not null" json:"budget"`
	Deadline    time.Time  `gorm:"not null" json:"deadline"`
	Attachments datatypes.JSON `json:"attachments"`
	Status      string     `gorm:"size:20;not null;default:'open'" json:"status"`
	AssignedTo  *uuid.UUID `json:"assigned_to"`

	Client       User          `gorm:"foreignkey:ClientID" json:"client,omitempty"`
	Category     Category      `gorm:"foreignkey:CategoryID" json:"category,omitempty"`
	Applications []Application `gorm:"foreignkey:ServiceID" json:"applications,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Application records one designer's bid on a service request. The composite
// unique index is what rejects duplicate applications under concurrency.
type Application struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ServiceID  uuid.UUID `gorm:"not null;uniqueIndex:idx_service_designer" json:"service_id"`
	DesignerID uuid.UUID `gorm:"not null;uniqueIndex:idx_service_designer" json:"designer_id"`
	AppliedAt  time.Time `json:"applied_at"`

	Designer User `gorm:"foreignkey:DesignerID" json:"designer,omitempty"`
}

// PartyClient and PartyDesigner implement authz.Resource. The designer party
// is only granted once the request has been assigned.
func (s *ServiceRequest) PartyClient() uuid.UUID    { return s.ClientID }
func (s *ServiceRequest) PartyDesigner() *uuid.UUID { return s.AssignedTo }

func (s *ServiceRequest) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.AppliedAt.IsZero() {
		a.AppliedAt = time.Now()
	}
	return nil
}
