package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Material is a tracked raw-material stock counter. Quantity never goes below zero.
type Material struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Name             string          `gorm:"size:255;not null" json:"name"`
	Quantity         decimal.Decimal `gorm:"type:decimal(14,4);not null" json:"quantity"`
	Unit             string          `gorm:"size:20;not null" json:"unit"`
	ReorderThreshold decimal.Decimal `gorm:"type:decimal(14,4);not null" json:"reorder_threshold"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new material
func (m *Material) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Material model
func (Material) TableName() string {
	return "materials"
}

// BelowThreshold reports whether the material needs reordering.
func (m *Material) BelowThreshold() bool {
	return m.Quantity.LessThanOrEqual(m.ReorderThreshold)
}

// MaterialUsage is an append-only audit row of stock consumed by an order.
// The (order, material) pair is unique so a replayed settlement cannot
// record a second set.
type MaterialUsage struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	OrderID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_usage_order_material,priority:1" json:"order_id"`
	MaterialID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_usage_order_material,priority:2" json:"material_id"`
	Quantity   decimal.Decimal `gorm:"type:decimal(14,4);not null" json:"quantity"`
	CreatedAt  time.Time       `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new usage row
func (u *MaterialUsage) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the MaterialUsage model
func (MaterialUsage) TableName() string {
	return "material_usages"
}
