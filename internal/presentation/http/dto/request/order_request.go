package request

import "github.com/google/uuid"

// OrderAddonRequest is an add-on attached to a cart line
type OrderAddonRequest struct {
	AddonID  uuid.UUID `json:"addon_id" binding:"required"`
	Quantity int       `json:"quantity"`
}

// OrderItemRequest is one cart line
type OrderItemRequest struct {
	ProductID uuid.UUID           `json:"product_id" binding:"required"`
	Quantity  int                 `json:"quantity"`
	Variant   *string             `json:"variant" binding:"omitempty,max=100"`
	Addons    []OrderAddonRequest `json:"addons" binding:"omitempty,dive"`
}

// CreateOrderRequest represents an order creation request
type CreateOrderRequest struct {
	Channel       string             `json:"channel" binding:"required"`
	PaymentMethod string             `json:"payment_method" binding:"required"`
	CustomerName  string             `json:"customer_name" binding:"omitempty,max=255"`
	CustomerEmail string             `json:"customer_email" binding:"omitempty,email,max=255"`
	Notes         *string            `json:"notes" binding:"omitempty,max=1000"`
	Items         []OrderItemRequest `json:"items" binding:"required,dive"`
}

// OrderListFilter represents the query parameters of the order list
type OrderListFilter struct {
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
	Status  string `form:"status"`
	Channel string `form:"channel"`
}
