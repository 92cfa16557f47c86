package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Recipe maps a product (optionally narrowed to a variant) or an add-on to
// one material it consumes. Exactly one of ProductID and AddonID is set.
type Recipe struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	ProductID       *uuid.UUID      `gorm:"type:uuid;index" json:"product_id,omitempty"`
	AddonID         *uuid.UUID      `gorm:"type:uuid;index" json:"addon_id,omitempty"`
	Variant         *string         `gorm:"size:100" json:"variant,omitempty"`
	MaterialID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"material_id"`
	QuantityPerUnit decimal.Decimal `gorm:"type:decimal(14,4);not null" json:"quantity_per_unit"`
	Active          bool            `gorm:"not null;index" json:"active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	// Relationships
	Material *Material `gorm:"foreignKey:MaterialID" json:"material,omitempty"`
}

// BeforeCreate generates a UUID before creating a new recipe entry
func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Recipe model
func (Recipe) TableName() string {
	return "recipes"
}
