package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/brewline-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order represents a priced customer order
type Order struct {
	ID             uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	Status         enum.OrderStatus  `gorm:"size:20;not null;index" json:"status"`
	Channel        enum.OrderChannel `gorm:"size:20;not null" json:"channel"`
	TotalAmount    decimal.Decimal   `gorm:"type:decimal(14,2);not null" json:"total_amount"`
	CustomerID     *uuid.UUID        `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	CustomerName   string            `gorm:"size:255" json:"customer_name,omitempty"`
	CustomerEmail  string            `gorm:"size:255" json:"customer_email,omitempty"`
	CustomerRole   enum.CustomerRole `gorm:"size:50" json:"customer_role,omitempty"`
	Notes          *string           `gorm:"type:text" json:"notes,omitempty"`
	StockShortfall bool              `gorm:"not null" json:"stock_shortfall"`
	RefundDue      bool              `gorm:"not null" json:"refund_due"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	DeletedAt      gorm.DeletedAt    `gorm:"index" json:"-"`

	// Relationships
	Items   []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	Payment *Payment    `gorm:"foreignKey:OrderID" json:"payment,omitempty"`
}

// BeforeCreate generates a UUID before creating a new order
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// ItemsTotal sums the line subtotals.
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal)
	}
	return total
}

// OrderItem represents a line item in an order. Price and cost are
// snapshotted at order time.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Name      string          `gorm:"size:255;not null" json:"name"`
	Variant   *string         `gorm:"size:100" json:"variant,omitempty"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"unit_price"`
	UnitCost  decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"unit_cost"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"subtotal"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	// Relationships
	Addons []OrderItemAddon `gorm:"foreignKey:OrderItemID" json:"addons,omitempty"`
}

// BeforeCreate generates a UUID before creating a new order item
func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}

// OrderItemAddon is an add-on attached to one order item.
// Subtotal = Price x Quantity.
type OrderItemAddon struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	OrderItemID uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_item_id"`
	AddonID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"addon_id"`
	Name        string          `gorm:"size:255;not null" json:"name"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	Price       decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"price"`
	Cost        decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"cost"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"subtotal"`
	CreatedAt   time.Time       `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new add-on line
func (a *OrderItemAddon) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the OrderItemAddon model
func (OrderItemAddon) TableName() string {
	return "order_item_addons"
}
