package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/brewline-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment settles exactly one order
type Payment struct {
	ID               uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	OrderID          uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex" json:"order_id"`
	Method           enum.PaymentMethod `gorm:"size:20;not null" json:"method"`
	Status           enum.PaymentStatus `gorm:"size:20;not null;index:idx_payments_status_expiry,priority:1" json:"status"`
	Amount           decimal.Decimal    `gorm:"type:decimal(14,2);not null" json:"amount"`
	PaidAmount       decimal.Decimal    `gorm:"type:decimal(14,2);not null" json:"paid_amount"`
	ChargeToken      *string            `gorm:"size:255" json:"charge_token,omitempty"`
	RedirectURL      *string            `gorm:"size:500" json:"redirect_url,omitempty"`
	GatewayReference string             `gorm:"size:100;index" json:"gateway_reference,omitempty"`
	GatewayStatus    string             `gorm:"size:50" json:"gateway_status,omitempty"`
	ExpiresAt        *time.Time         `gorm:"index:idx_payments_status_expiry,priority:2" json:"expires_at,omitempty"`
	PaidAt           *time.Time         `json:"paid_at,omitempty"`
	Version          int                `gorm:"not null" json:"-"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// BeforeCreate generates a UUID and seeds the optimistic version
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Version == 0 {
		p.Version = 1
	}
	return nil
}

// TableName returns the table name for the Payment model
func (Payment) TableName() string {
	return "payments"
}
