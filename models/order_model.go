package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	OrderStatusAwaitingPayment = "awaiting_payment"
	OrderStatusInProgress      = "in_progress"
	OrderStatusRevision        = "revision"
	OrderStatusCompleted       = "completed"
	OrderStatusCancelled       = "cancelled"
)

// DefaultMaxRevisions caps rejection cycles before an order is force-completed.
const DefaultMaxRevisions = 3

// Order is created exactly once per accepted service request (ServiceID is
// unique). IsPaid flips false→true at most once, driven only by a settled
// gateway notification; RevisionCount is monotonically non-decreasing.
type Order struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ServiceID  uuid.UUID `gorm:"not null;unique" json:"service_id"`
	ClientID   uuid.UUID `gorm:"not null" json:"client_id"`
	DesignerID uuid.UUID `gorm:"not null" json:"designer_id"`

	Price         float64 `gorm:"type:numeric(12,2);not null" json:"price"`
	Status        string  `gorm:"size:20;not null;default:'awaiting_payment'" json:"status"`
	RevisionCount int     `gorm:"not null;default:0" json:"revision_count"`
	MaxRevisions  int     `gorm:"not null;default:3" json:"max_revisions"`
	IsPaid        bool    `gorm:"not null;default:false" json:"is_paid"`

	Service  ServiceRequest `gorm:"foreignkey:ServiceID" json:"service,omitempty"`
	Client   User           `gorm:"foreignkey:ClientID" json:"client,omitempty"`
	Designer User           `gorm:"foreignkey:DesignerID" json:"designer,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PartyClient and PartyDesigner implement authz.Resource.
func (o *Order) PartyClient() uuid.UUID    { return o.ClientID }
func (o *Order) PartyDesigner() *uuid.UUID { return &o.DesignerID }

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// ValidTransitionStatus reports whether s is a status a client or designer may
// request through the order status endpoint.
func ValidTransitionStatus(s string) bool {
	switch s {
	case OrderStatusInProgress, OrderStatusRevision, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}
