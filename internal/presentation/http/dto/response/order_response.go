package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/brewline-api/internal/domain/entity"
	"github.com/sangkips/brewline-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// CreateOrderResponse is returned after an order is placed. Gateway payments
// carry the charge token the client completes the payment with.
type CreateOrderResponse struct {
	OrderID       uuid.UUID          `json:"order_id"`
	Status        enum.OrderStatus   `json:"status"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	PaymentStatus enum.PaymentStatus `json:"payment_status,omitempty"`
	ChargeToken   string             `json:"charge_token,omitempty"`
	RedirectURL   string             `json:"redirect_url,omitempty"`
	ExpiresAt     *time.Time         `json:"expires_at,omitempty"`
}

// NewCreateOrderResponse builds the response from the created order.
func NewCreateOrderResponse(order *entity.Order, chargeToken, redirectURL string, expiresAt *time.Time) CreateOrderResponse {
	resp := CreateOrderResponse{
		OrderID:     order.ID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		ChargeToken: chargeToken,
		RedirectURL: redirectURL,
		ExpiresAt:   expiresAt,
	}
	if order.Payment != nil {
		resp.PaymentStatus = order.Payment.Status
	}
	return resp
}

// NotificationAck acknowledges a gateway notification
type NotificationAck struct {
	Received bool   `json:"received"`
	Status   string `json:"status"`
}
