package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Gateway transaction statuses as Midtrans reports them. The gateway is
// authoritative: TransactionStatus is a last-write-wins projection of its
// notification stream.
const (
	TxStatusPending    = "pending"
	TxStatusSettlement = "settlement"
	TxStatusCapture    = "capture"
	TxStatusDeny       = "deny"
	TxStatusCancel     = "cancel"
	TxStatusExpire     = "expire"
	TxStatusFailure    = "failure"
	TxStatusRefund     = "refund"
)

// Payment is one gateway payment attempt for an order. GatewayOrderID is the
// reference echoed by the gateway and serves as the idempotency key: an order
// may accumulate several attempts, but each notification maps to exactly one
// row here.
type Payment struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	OrderID  uuid.UUID `gorm:"not null" json:"order_id"`
	ClientID uuid.UUID `gorm:"not null" json:"client_id"`

	Amount            float64        `gorm:"type:numeric(12,2);not null" json:"amount"`
	PaymentMethod     string         `gorm:"size:50" json:"payment_method"`
	TransactionStatus string         `gorm:"size:20;not null;default:'pending'" json:"transaction_status"`
	FraudStatus       *string        `gorm:"size:20" json:"fraud_status"`
	GatewayOrderID    string         `gorm:"size:255;not null;unique" json:"gateway_order_id"`
	GatewayResponse   datatypes.JSON `json:"gateway_response"`
	ReceiptURL        *string        `gorm:"type:text" json:"receipt_url"`

	Order  Order `gorm:"foreignkey:OrderID" json:"order,omitempty"`
	Client User  `gorm:"foreignkey:ClientID" json:"client,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Settled reports whether a gateway status pair represents captured funds.
func Settled(transactionStatus, fraudStatus string) bool {
	if transactionStatus == TxStatusSettlement {
		return true
	}
	return transactionStatus == TxStatusCapture && fraudStatus == "accept"
}
